package viewer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Route is the upload pipeline chosen for a selected file.
type Route int

const (
	RouteDirectDicom Route = iota + 1
	RouteE2EPending
)

func (r Route) String() string {
	switch r {
	case RouteDirectDicom:
		return "direct"
	case RouteE2EPending:
		return "e2e"
	default:
		return "none"
	}
}

// routes maps accepted suffixes to their pipeline. The service decodes .fds and
// .fda containers on its own, so they upload like DICOM.
var routes = map[string]Route{
	".dcm": RouteDirectDicom,
	".fds": RouteDirectDicom,
	".fda": RouteDirectDicom,
	".e2e": RouteE2EPending,
}

// AcceptedSuffixes lists the suffixes Classify accepts, in display order.
var AcceptedSuffixes = []string{".dcm", ".e2e", ".fds", ".fda"}

// Classify picks the upload pipeline for filename by its suffix alone.
func Classify(filename string) (Route, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if route, ok := routes[ext]; ok {
		return route, nil
	}

	msg := fmt.Sprintf("%q is not a DICOM or E2E file", filepath.Base(filename))
	if ext == "" {
		msg = fmt.Sprintf("%q has no file extension", filepath.Base(filename))
	} else if hint := closestSuffix(ext); hint != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", hint)
	}
	return 0, &Error{Kind: KindUnsupportedFileType, Message: msg}
}

// closestSuffix returns the accepted suffix at most two edits away from ext, if any.
func closestSuffix(ext string) string {
	best, bestDist := "", 3
	for _, candidate := range AcceptedSuffixes {
		if d := levenshtein.ComputeDistance(ext, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
