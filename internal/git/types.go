package git

import (
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
)

// CloneConfig selects the repository revision holding the catalog.
// At most one of Branch, Tag and Commit is set.
type CloneConfig struct {
	URL    string
	Branch string
	Tag    string
	Commit string

	// Auth enables HTTP basic authentication when set
	Auth *AuthConfig
}

// AuthConfig holds HTTP basic credentials
type AuthConfig struct {
	Username string
	Password string
}

// RepositoryInfo is an in-memory clone
type RepositoryInfo struct {
	Repository *git.Repository

	// Branch is the checked out branch, empty for tags and commits
	Branch string

	// CommitHash is the checked out commit
	CommitHash string

	RemoteURL string

	// storerFilesystem and objectCache are held so Cleanup can release them;
	// go-git never frees its object storage on its own
	storerFilesystem billy.Filesystem
	objectCache      cache.Object
}
