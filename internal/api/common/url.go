package common

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/asset-librarian/internal/validators"
)

// LibraryNameParam returns the decoded {name} route parameter. Names are
// checked with the same rules as configured library names, so a name that
// fails here can never match a library.
func LibraryNameParam(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in library name")
	}
	if err := validators.ValidateLibraryName(name); err != nil {
		return "", err
	}
	return name, nil
}
