package helpers

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/onsi/gomega"
)

// GitTestHelper manages Git repositories for testing
type GitTestHelper struct {
	tempDir string
}

// GitTestRepository represents a test Git repository
type GitTestRepository struct {
	Name     string
	Path     string
	CloneURL string

	repo *git.Repository
}

// NewGitTestHelper creates a new Git test helper
func NewGitTestHelper() *GitTestHelper {
	tempDir, err := os.MkdirTemp("", "git-test-repos-*")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return &GitTestHelper{tempDir: tempDir}
}

// CreateRepository creates a repository on a main branch with an initial commit
func (g *GitTestHelper) CreateRepository(name string) *GitTestRepository {
	repoPath := filepath.Join(g.tempDir, name)
	repo, err := git.PlainInitWithOptions(repoPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	r := &GitTestRepository{
		Name:     name,
		Path:     repoPath,
		CloneURL: "file://" + repoPath,
		repo:     repo,
	}
	g.commitFile(r, "README.md", []byte("# Sound banks\n"), "Initial commit")
	return r
}

// CommitCatalog commits the catalog to filename in the repository
func (g *GitTestHelper) CommitCatalog(repo *GitTestRepository, filename string, c *Catalog, message string) {
	g.commitFile(repo, filename, c.JSON(), message)
}

// CreateTag tags HEAD
func (*GitTestHelper) CreateTag(repo *GitTestRepository, tagName string) {
	head, err := repo.repo.Head()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	_, err = repo.repo.CreateTag(tagName, head.Hash(), nil)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
}

// CleanupRepositories removes all test repositories
func (g *GitTestHelper) CleanupRepositories() error {
	return os.RemoveAll(g.tempDir)
}

func (*GitTestHelper) commitFile(repo *GitTestRepository, filename string, content []byte, message string) {
	filePath := filepath.Join(repo.Path, filename)
	gomega.Expect(os.MkdirAll(filepath.Dir(filePath), 0750)).To(gomega.Succeed())
	gomega.Expect(os.WriteFile(filePath, content, 0600)).To(gomega.Succeed())

	wt, err := repo.repo.Worktree()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	_, err = wt.Add(filename)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
}
