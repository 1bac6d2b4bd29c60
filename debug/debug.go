package debug

import (
	"os"
	"strconv"
)

type debug struct {
	LoadEnv bool
	Include bool
	Expand  bool
	Time    bool
	Schema  bool
}

var d *debug

func init() {
	d = &debug{}
	d.LoadEnv = boolEnv("YP_DEBUG_LOAD_ENV")
	d.Include = boolEnv("YP_DEBUG_INCLUDE")
	d.Expand = boolEnv("YP_DEBUG_EXPAND")
	d.Time = boolEnv("YP_DEBUG_TIME")
	d.Schema = boolEnv("YP_DEBUG_SCHEMA")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func LoadEnv() bool {
	return d.LoadEnv
}
func Include() bool {
	return d.Include
}
func Expand() bool {
	return d.Expand
}
func Time() bool {
	return d.Time
}
func Schema() bool {
	return d.Schema
}
