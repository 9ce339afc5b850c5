package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// gte returns a ParamValidator that checks if the argument is greater than or equal to the value captured in the closure.
func gte(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue >= closedValue
	})
}

// gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

func anyValue(int64) bool { return true }

// ParseValidateGte parses a required int32 query parameter that must be >= value.
func ParseValidateGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value int64) (int32, bool) {
	v, ok := parseValidate(r, w, logger, key, 32, gte(value))
	return int32(v), ok
}

// ParseValidateGt parses a required int32 query parameter that must be > value.
func ParseValidateGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value int64) (int32, bool) {
	v, ok := parseValidate(r, w, logger, key, 32, gt(value))
	return int32(v), ok
}

// ParseOptionalInt parses an optional int64 query parameter. ok is false only when the value is
// present but malformed, in which case a 400 has been written; present reports whether it was set.
func ParseOptionalInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (value int64, present, ok bool) {
	if r.URL.Query().Get(key) == "" {
		return 0, false, true
	}
	v, ok := parseValidate(r, w, logger, key, 64, anyValue)
	return v, ok, ok
}

func parseValidate(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, bitSize int, pValidator ParamValidator) (int64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return 0, false
	}
	intValue, err := strconv.ParseInt(value, 10, bitSize)
	if err != nil || !pValidator(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}
