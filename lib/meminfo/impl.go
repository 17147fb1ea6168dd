package meminfo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const procMeminfo = "/proc/meminfo"

func getMemInfo() (*MemInfo, error) {
	file, err := os.Open(procMeminfo)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readMemInfo(file)
}

func readMemInfo(reader io.Reader) (*MemInfo, error) {
	var info MemInfo
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing: %s: %s", fields[0], err)
		}
		if len(fields) > 2 && fields[2] == "kB" {
			value *= 1024
		}
		switch fields[0] {
		case "MemAvailable:":
			info.Available = value
			info.HaveAvailable = true
		case "Buffers:":
			info.Buffers = value
		case "Cached:":
			info.Cached = value
		case "MemFree:":
			info.Free = value
		case "MemTotal:":
			info.Total = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if info.Total < 1 {
		return nil, fmt.Errorf("no MemTotal in %s", procMeminfo)
	}
	return &info, nil
}
