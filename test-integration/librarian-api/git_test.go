package integration

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/test-integration/librarian-api/helpers"
)

var _ = Describe("Git Source Integration", Label("git"), func() {
	var (
		tempDir      string
		storageDir   string
		gitHelper    *helpers.GitTestHelper
		testRepo     *helpers.GitTestRepository
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("git-test-")
		storageDir = filepath.Join(tempDir, "storage")
		Expect(os.MkdirAll(storageDir, 0750)).To(Succeed())

		gitHelper = helpers.NewGitTestHelper()
		testRepo = gitHelper.CreateRepository("game-audio")
		gitHelper.CommitCatalog(testRepo, "GeneratedSoundBanks/Windows/SoundbanksInfo.json",
			helpers.CreateTestCatalog(), "Add generated sound banks")
	})

	AfterEach(func() {
		if serverHelper != nil {
			_ = serverHelper.StopServer()
		}
		_ = gitHelper.CleanupRepositories()
		cleanupTempDir(tempDir)
	})

	start := func(sourceConfig map[string]string) {
		configFile := helpers.WriteConfigYAML(tempDir, "windows", "git", sourceConfig, helpers.DefaultLibrariesYAML)

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configFile, storageDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	}

	It("should clone the repository and partition its catalog", func() {
		start(map[string]string{
			"url":    testRepo.CloneURL,
			"path":   "GeneratedSoundBanks/Windows/SoundbanksInfo.json",
			"branch": "main",
		})

		list := serverHelper.WaitForLibraries(30 * time.Second)
		Expect(list.Libraries).To(HaveLen(4))
		Expect(list.Revision).To(HaveLen(40), "the commit hash is recorded")
	})

	It("should use the catalog at a tag", func() {
		gitHelper.CreateTag(testRepo, "v1.0.0")
		gitHelper.CommitCatalog(testRepo, "GeneratedSoundBanks/Windows/SoundbanksInfo.json",
			helpers.CreateTestCatalog().AddMedia(14, "Gunshot_Reload.wav", 2), "Add reload")

		start(map[string]string{
			"url":  testRepo.CloneURL,
			"path": "GeneratedSoundBanks/Windows/SoundbanksInfo.json",
			"tag":  "v1.0.0",
		})
		serverHelper.WaitForLibraries(30 * time.Second)

		resp, err := serverHelper.GetLibrary("Weapons")
		Expect(err).NotTo(HaveOccurred())
		var detail service.LibraryDetail
		helpers.DecodeJSON(resp, &detail)
		Expect(detail.Assets).To(HaveLen(2))
	})

	It("should pick up new commits on the next sync", func() {
		start(map[string]string{
			"url":          testRepo.CloneURL,
			"path":         "GeneratedSoundBanks/Windows/SoundbanksInfo.json",
			"branch":       "main",
			"syncInterval": "1s",
		})
		first := serverHelper.WaitForLibraries(30 * time.Second)

		gitHelper.CommitCatalog(testRepo, "GeneratedSoundBanks/Windows/SoundbanksInfo.json",
			helpers.CreateTestCatalog().AddMedia(14, "Gunshot_Reload.wav", 2), "Add reload")

		Eventually(func() string {
			resp, err := serverHelper.GetLibraries("")
			if err != nil {
				return ""
			}
			var list service.LibraryList
			helpers.DecodeJSON(resp, &list)
			return list.CatalogHash
		}, 30*time.Second, 500*time.Millisecond).ShouldNot(Equal(first.CatalogHash))
	})
})
