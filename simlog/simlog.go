// Package simlog implements a simple leveled log wrapper for the simulation
// driver. Time/Date are not logged by default because systemd adds them; set
// logdate to enable timestamps for non-systemd deployments.
//
// The package additionally supports switching the active loggers to a file
// and rotating that file once it exceeds a configured size, which the cycle
// engine calls into once per cycle (see Rotate).
package simlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
	CritWriter  io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]    "
	InfoPrefix  string = "<6>[INFO]     "
	WarnPrefix  string = "<4>[WARNING]  "
	ErrPrefix   string = "<3>[ERROR]    "
	CritPrefix  string = "<2>[CRITICAL] "
)

var (
	DebugLog *log.Logger = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	InfoLog  *log.Logger = log.New(InfoWriter, InfoPrefix, log.LstdFlags|log.Lshortfile)
	WarnLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.LstdFlags|log.Lshortfile)
	ErrLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Llongfile)
	CritLog  *log.Logger = log.New(CritWriter, CritPrefix, log.LstdFlags|log.Llongfile)
)

var loglevel string = "info"

var rotateMu sync.Mutex
var currentLogPath string
var currentLogFile *os.File

// Init initializes simlog. lvl indicates the loglevel: "debug", "info",
// "warn", "err", "fatal", "crit". If logdate is set a date and time is added
// to the log output.
func Init(lvl string, logdate bool) {
	switch lvl {
	case "crit":
		ErrWriter = io.Discard
		fallthrough
	case "err", "fatal":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// Nothing to do...
	default:
		fmt.Printf("simlog: loglevel %#v invalid, using 'debug'\n", lvl)
	}

	flags := log.Lshortfile
	if logdate {
		flags = log.LstdFlags | log.Lshortfile
	}
	DebugLog = log.New(DebugWriter, DebugPrefix, flagsOrZero(logdate, flags))
	InfoLog = log.New(InfoWriter, InfoPrefix, flags)
	WarnLog = log.New(WarnWriter, WarnPrefix, flags)
	ErrLog = log.New(ErrWriter, ErrPrefix, longFlags(logdate))
	CritLog = log.New(CritWriter, CritPrefix, longFlags(logdate))

	loglevel = lvl
}

func flagsOrZero(logdate bool, withDate int) int {
	if logdate {
		return withDate
	}
	return 0
}

func longFlags(logdate bool) int {
	if logdate {
		return log.LstdFlags | log.Llongfile
	}
	return log.Llongfile
}

// Loglevel returns the current loglevel.
func Loglevel() string {
	return loglevel
}

// SetOutputFile routes all loggers at or below lvl to logfile, opening it in
// append mode. Subsequent calls to Rotate act on this path.
func SetOutputFile(lvl string, logfile string) error {
	f, err := os.OpenFile(logfile, os.O_APPEND|os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	rotateMu.Lock()
	currentLogPath = logfile
	currentLogFile = f
	rotateMu.Unlock()

	switch lvl {
	case "crit":
		CritLog.SetOutput(f)
		fallthrough
	case "err", "fatal":
		ErrLog.SetOutput(f)
		fallthrough
	case "warn":
		WarnLog.SetOutput(f)
		fallthrough
	case "info":
		InfoLog.SetOutput(f)
		fallthrough
	case "debug":
		DebugLog.SetOutput(f)
	default:
		return fmt.Errorf("simlog: loglevel %#v invalid", lvl)
	}
	return nil
}

// ShouldRotate reports whether the currently open log file has grown past
// maxBytes. It is cheap (a single stat call) so the cycle engine can call it
// every cycle.
func ShouldRotate(maxBytes int64) bool {
	rotateMu.Lock()
	f := currentLogFile
	rotateMu.Unlock()
	if f == nil || maxBytes <= 0 {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Size() > maxBytes
}

// Rotate renames the active log file with a timestamp suffix and reopens a
// fresh file at the original path. It is a no-op if no log file is open.
func Rotate() error {
	rotateMu.Lock()
	defer rotateMu.Unlock()

	if currentLogFile == nil {
		return nil
	}

	path := currentLogPath
	rotated := fmt.Sprintf("%s.%s", path, time.Now().UTC().Format("20060102T150405"))

	if err := currentLogFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(path, rotated); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	currentLogFile = f

	DebugLog.SetOutput(f)
	InfoLog.SetOutput(f)
	WarnLog.SetOutput(f)
	ErrLog.SetOutput(f)
	CritLog.SetOutput(f)
	return nil
}

/* PRIVATE HELPER */

func printStr(v ...any) string {
	return fmt.Sprint(v...)
}

func printfStr(format string, v ...any) string {
	return fmt.Sprintf(format, v...)
}

/* PRINT */

// Print logs to STDOUT without string formatting; the process continues.
func Print(v ...any) {
	fmt.Fprintln(os.Stdout, v...)
}

// Abort logs to STDOUT and exits with code 1.
func Abort(v ...any) {
	fmt.Fprintln(os.Stdout, v...)
	os.Exit(1)
}

func ComponentPrint(component string, v ...any) {
	InfoLog.Print(fmt.Sprintf("[%s] ", component), v)
}

// Debug logs to the DEBUG writer; the process continues.
func Debug(v ...any) {
	DebugLog.Output(3, printStr(v...))
}

func ComponentDebug(component string, v ...any) {
	DebugLog.Print(fmt.Sprintf("[%s] ", component), v)
}

// Info logs to the INFO writer; the process continues.
func Info(v ...any) {
	InfoLog.Output(3, printStr(v...))
}

func ComponentInfo(component string, v ...any) {
	InfoLog.Print(fmt.Sprintf("[%s] ", component), v)
}

// Warn logs to the WARNING writer; the process continues.
func Warn(v ...any) {
	WarnLog.Output(3, printStr(v...))
}

func ComponentWarn(component string, v ...any) {
	WarnLog.Print(fmt.Sprintf("[%s] ", component), v)
}

// Error logs to the ERROR writer; the process continues.
func Error(v ...any) {
	ErrLog.Output(3, printStr(v...))
}

func ComponentError(component string, v ...any) {
	ErrLog.Print(fmt.Sprintf("[%s] ", component), v)
}

// Fatal writes to the CRITICAL writer and exits with code 1. Used for
// configuration errors that make the machine unbuildable.
func Fatal(v ...any) {
	CritLog.Output(3, printStr(v...))
	os.Exit(1)
}

func ComponentFatal(component string, v ...any) {
	CritLog.Print(fmt.Sprintf("[%s] ", component), v)
	os.Exit(1)
}

/* PRINTF */

func Debugf(format string, v ...any) {
	DebugLog.Output(3, printfStr(format, v...))
}

func Infof(format string, v ...any) {
	InfoLog.Output(3, printfStr(format, v...))
}

func Warnf(format string, v ...any) {
	WarnLog.Output(3, printfStr(format, v...))
}

func Errorf(format string, v ...any) {
	ErrLog.Output(3, printfStr(format, v...))
}

func Fatalf(format string, v ...any) {
	CritLog.Output(3, printfStr(format, v...))
	os.Exit(1)
}
