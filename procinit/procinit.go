// Package procinit provides the driver's process bring-up helpers:
// .env loading, privilege dropping, and systemd readiness notification
// (spec.md §4.10), invoked from cmd/simdriver before the Machine Assembler
// runs.
package procinit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"strings"
	"syscall"

	simlog "github.com/coreforge/simdriver/simlog"
)

// LoadEnv reads a .env file and sets every variable it defines in the
// process environment. Supports "# comment" lines (only at line start),
// "export KEY=VALUE", and double-quoted values with \n \r \t \" escapes.
func LoadEnv(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	s := bufio.NewScanner(bufio.NewReader(f))
	for s.Scan() {
		line := s.Text()
		if strings.HasPrefix(line, "#") || len(line) == 0 {
			continue
		}
		if strings.Contains(line, "#") {
			return errors.New("'#' is only supported at the start of a line")
		}

		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("unsupported line: %#v", line)
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if strings.HasPrefix(val, "\"") {
			val, err = unquote(val, line)
			if err != nil {
				return err
			}
		}
		os.Setenv(key, val)
	}
	return s.Err()
}

func unquote(val, line string) (string, error) {
	if !strings.HasSuffix(val, "\"") {
		return "", fmt.Errorf("unsupported line: %#v", line)
	}
	runes := []rune(val[1 : len(val)-1])
	var sb strings.Builder
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		if i >= len(runes) {
			return "", fmt.Errorf("invalid escape sequence at end of string: %#v", line)
		}
		switch runes[i] {
		case 'n':
			sb.WriteRune('\n')
		case 'r':
			sb.WriteRune('\r')
		case 't':
			sb.WriteRune('\t')
		case '"':
			sb.WriteRune('"')
		default:
			return "", fmt.Errorf("unsupported escape sequence: backslash %#v", runes[i])
		}
	}
	return sb.String(), nil
}

// DropPrivileges sets the process group then user id, in that order, so the
// privilege needed to change uid is not lost first. Either parameter may be
// empty to skip that step. Irreversible within the process.
func DropPrivileges(username, group string) error {
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			return fmt.Errorf("procinit: looking up group %q: %w", group, err)
		}
		gid, err := strconv.Atoi(g.Gid)
		if err != nil {
			return fmt.Errorf("procinit: parsing gid %q: %w", g.Gid, err)
		}
		if err := syscall.Setgid(gid); err != nil {
			return fmt.Errorf("procinit: setgid(%d): %w", gid, err)
		}
	}

	if username != "" {
		u, err := user.Lookup(username)
		if err != nil {
			return fmt.Errorf("procinit: looking up user %q: %w", username, err)
		}
		uid, err := strconv.Atoi(u.Uid)
		if err != nil {
			return fmt.Errorf("procinit: parsing uid %q: %w", u.Uid, err)
		}
		if err := syscall.Setuid(uid); err != nil {
			return fmt.Errorf("procinit: setuid(%d): %w", uid, err)
		}
	}
	return nil
}

// SystemdNotify sends a sd_notify-style readiness/status update via the
// systemd-notify helper binary. A no-op outside a systemd unit
// (NOTIFY_SOCKET unset). Errors are logged, not returned: there is no
// useful recovery action from the caller's side.
func SystemdNotify(ready bool, status string) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return
	}

	args := []string{fmt.Sprintf("--pid=%d", os.Getpid())}
	if ready {
		args = append(args, "--ready")
	}
	if status != "" {
		args = append(args, fmt.Sprintf("--status=%s", status))
	}

	if err := exec.Command("systemd-notify", args...).Run(); err != nil {
		simlog.ComponentWarn("procinit", "systemd-notify failed:", err)
	}
}
