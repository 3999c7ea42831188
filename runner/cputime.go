package runner

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tklauser/go-sysconf"
)

type CPUTimes struct {
	User   time.Duration
	System time.Duration
	// Valid is false where /proc/self/stat is unavailable.
	Valid bool
}

func (c CPUTimes) Sub(earlier CPUTimes) CPUTimes {
	if !c.Valid || !earlier.Valid {
		return CPUTimes{}
	}
	return CPUTimes{
		User:   c.User - earlier.User,
		System: c.System - earlier.System,
		Valid:  true,
	}
}

// ReadCPUTimes reads the process's user and system time in clock ticks
// from /proc/self/stat (fields 14 and 15).
func ReadCPUTimes() CPUTimes {
	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || clktck <= 0 {
		return CPUTimes{}
	}
	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return CPUTimes{}
	}
	// The command name may contain spaces; fields are counted after it.
	s := string(contents)
	if i := strings.LastIndexByte(s, ')'); i >= 0 {
		s = s[i+1:]
	}
	fields := strings.Fields(s)
	// fields[0] is the state, field 3 overall.
	if len(fields) < 13 {
		return CPUTimes{}
	}
	utime, err := strconv.ParseInt(fields[11], 10, 64)
	if err != nil {
		return CPUTimes{}
	}
	stime, err := strconv.ParseInt(fields[12], 10, 64)
	if err != nil {
		return CPUTimes{}
	}
	tick := time.Second / time.Duration(clktck)
	return CPUTimes{
		User:   time.Duration(utime) * tick,
		System: time.Duration(stime) * tick,
		Valid:  true,
	}
}
