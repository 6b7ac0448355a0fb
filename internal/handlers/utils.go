package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

func QueryParamToOptionalInt(r *http.Request, name string, orDefault int) (int, error) {
	param := r.URL.Query().Get(name)
	if param != "" {
		return strconv.Atoi(param)
	}
	return orDefault, nil
}

func QueryParamToOptionalInt64(r *http.Request, name string, orDefault int64) (int64, error) {
	param := r.URL.Query().Get(name)
	if param != "" {
		return strconv.ParseInt(param, 10, 64)
	}
	return orDefault, nil
}

func QueryParamToOptionalTime(r *http.Request, name string, orDefault time.Time) (time.Time, error) {
	param := r.URL.Query().Get(name)
	if param != "" {
		return time.Parse("2006-01-02T15:04:05.000Z07:00", param)
	}
	return orDefault, nil
}

func QueryParamToOptionalBool(r *http.Request, name string, orDefault bool) (bool, error) {
	param := r.URL.Query().Get(name)
	if param != "" {
		return strconv.ParseBool(param)
	}
	return orDefault, nil
}

func ParamToInt64(r *http.Request, param string) (int64, error) {
	if param == "" {
		return 0, fmt.Errorf("missing path parameter")
	}
	return strconv.ParseInt(param, 10, 64)
}
