package handler

import "strings"

// SafeRedirectPath returns target if it is a same-site absolute path and
// RootPath otherwise. Protocol-relative targets ("//host", "/\host") are
// resolved against a foreign origin by browsers and are rejected.
func SafeRedirectPath(target string) string {
	if !strings.HasPrefix(target, "/") {
		return RootPath
	}

	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, `/\`) {
		return RootPath
	}

	return target
}
