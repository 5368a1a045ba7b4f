package common

import "fmt"

type LogLevel int32

const (
	DEBUG_INFO_DETAIL LogLevel = 1
	DEBUG_INFO        LogLevel = 2
	RDB_OP_FUNC_CALL  LogLevel = 4
	INFO              LogLevel = 16
	WARN              LogLevel = 32
	ERROR             LogLevel = 64
	FATAL             LogLevel = 128
	CACHE_OUT_IN_INFO LogLevel = 512
	PREFETCH_INFO     LogLevel = 1024
	BITMAP_SCAN_INFO  LogLevel = 2048
)

// ShPrintf prints only when logLevel is enabled in ActiveLogKindSetting
func ShPrintf(logLevel LogLevel, fmtStl string, a ...interface{}) {
	if logLevel&ActiveLogKindSetting > 0 {
		fmt.Printf(fmtStl, a...)
	}
}
