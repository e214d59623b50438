package sources

import (
	"fmt"

	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/git"
	"github.com/stacklok/asset-librarian/internal/httpclient"
)

// DefaultSourceHandlerFactory is the default implementation of SourceHandlerFactory
type DefaultSourceHandlerFactory struct {
	gitClient  git.Client
	httpClient httpclient.Client
}

var _ SourceHandlerFactory = (*DefaultSourceHandlerFactory)(nil)

// NewSourceHandlerFactory creates a new source handler factory. A nil client
// selects the default implementation.
func NewSourceHandlerFactory(gitClient git.Client, httpClient httpclient.Client) *DefaultSourceHandlerFactory {
	return &DefaultSourceHandlerFactory{
		gitClient:  gitClient,
		httpClient: httpClient,
	}
}

// CreateHandler creates the appropriate source handler for the given source type
func (f *DefaultSourceHandlerFactory) CreateHandler(sourceType string) (SourceHandler, error) {
	switch sourceType {
	case config.SourceTypeGit:
		return NewGitSourceHandler(f.gitClient), nil
	case config.SourceTypeAPI:
		return NewAPISourceHandler(f.httpClient), nil
	case config.SourceTypeFile:
		return NewFileSourceHandler(), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}
