package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/internal/storage"
	"github.com/stacklok/asset-librarian/test-integration/librarian-api/helpers"
)

var _ = Describe("File Source Integration", Label("file"), func() {
	var (
		tempDir      string
		catalogFile  string
		storageDir   string
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("file-test-")
		storageDir = filepath.Join(tempDir, "storage")
		Expect(os.MkdirAll(storageDir, 0750)).To(Succeed())

		catalogFile = filepath.Join(tempDir, "SoundbanksInfo.json")
		helpers.WriteCatalogFile(catalogFile, helpers.CreateTestCatalog())

		configFile := helpers.WriteConfigYAML(tempDir, "windows", "file", map[string]string{
			"path": catalogFile,
		}, helpers.DefaultLibrariesYAML)

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configFile, storageDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		_ = serverHelper.StopServer()
		cleanupTempDir(tempDir)
	})

	It("should partition the catalog on startup", func() {
		list := serverHelper.WaitForLibraries(10 * time.Second)
		Expect(list.CatalogHash).NotTo(BeEmpty())
		Expect(list.RunID).NotTo(BeEmpty())

		names := make([]string, 0, len(list.Libraries))
		for _, lib := range list.Libraries {
			names = append(names, lib.Name)
		}
		Expect(names).To(Equal([]string{"Weapons", "Music", "UI", "Base"}))

		resp, err := serverHelper.GetReadiness()
		Expect(err).NotTo(HaveOccurred())
		_ = resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should write the output and binary ref files", func() {
		serverHelper.WaitForLibraries(10 * time.Second)

		Expect(serverHelper.OutputFile("windows", storage.OutputFileName)).To(BeAnExistingFile())
		Expect(serverHelper.OutputFile("windows", "Weapons"+storage.BinaryFileExtension)).To(BeAnExistingFile())
	})

	It("should re-partition when the catalog file changes", func() {
		serverHelper.WaitForLibraries(10 * time.Second)

		updated := helpers.CreateTestCatalog().AddMedia(14, "Gunshot_Reload.wav", 2)
		helpers.WriteCatalogFile(catalogFile, updated)

		Eventually(func() int {
			resp, err := serverHelper.GetLibrary("Weapons")
			if err != nil {
				return 0
			}
			var detail service.LibraryDetail
			helpers.DecodeJSON(resp, &detail)
			return len(detail.Assets)
		}, 20*time.Second, 500*time.Millisecond).Should(Equal(3))
	})
})

var _ = Describe("Missing File Source", Label("file"), func() {
	It("should stay unready when the catalog file does not exist", func() {
		tempDir := createTempDir("file-missing-")
		defer cleanupTempDir(tempDir)

		configFile := helpers.WriteConfigYAML(tempDir, "windows", "file", map[string]string{
			"path": filepath.Join(tempDir, "missing.json"),
		}, helpers.DefaultLibrariesYAML)

		serverHelper, err := helpers.NewServerTestHelper(ctx, configFile, filepath.Join(tempDir, "storage"))
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		defer func() { _ = serverHelper.StopServer() }()
		serverHelper.WaitForServerReady(10 * time.Second)

		Consistently(func() int {
			resp, err := serverHelper.GetLibraries("")
			if err != nil {
				return 0
			}
			_ = resp.Body.Close()
			return resp.StatusCode
		}, 2*time.Second, 200*time.Millisecond).Should(Equal(http.StatusServiceUnavailable))
	})
})
