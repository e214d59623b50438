package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/test-integration/librarian-api/helpers"
)

var _ = Describe("API Source Integration", Label("api"), func() {
	var (
		tempDir       string
		catalogServer *helpers.MockCatalogServer
		serverHelper  *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("api-test-")
		storageDir := filepath.Join(tempDir, "storage")
		Expect(os.MkdirAll(storageDir, 0750)).To(Succeed())

		catalogServer = helpers.NewMockCatalogServer(helpers.CreateTestCatalog())

		configFile := helpers.WriteConfigYAML(tempDir, "switch", "api", map[string]string{
			"endpoint":     catalogServer.CatalogURL(),
			"syncInterval": "1s",
		}, helpers.DefaultLibrariesYAML)

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configFile, storageDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		_ = serverHelper.StopServer()
		catalogServer.Close()
		cleanupTempDir(tempDir)
	})

	It("should fetch and partition the catalog", func() {
		list := serverHelper.WaitForLibraries(10 * time.Second)
		Expect(list.Libraries).To(HaveLen(4))
		Expect(catalogServer.Requests()).To(BeNumerically(">=", 1))
	})

	It("should re-partition when the served catalog changes", func() {
		serverHelper.WaitForLibraries(10 * time.Second)

		catalogServer.SetCatalog(helpers.CreateTestCatalog().AddMedia(15, "Theme_Combat.wav", 3))

		Eventually(func() int {
			resp, err := serverHelper.GetLibrary("Music")
			if err != nil {
				return 0
			}
			var detail service.LibraryDetail
			helpers.DecodeJSON(resp, &detail)
			return len(detail.Assets)
		}, 30*time.Second, 500*time.Millisecond).Should(Equal(3))
	})

	It("should keep serving the last output when the endpoint fails", func() {
		first := serverHelper.WaitForLibraries(10 * time.Second)

		catalogServer.SetStatus(http.StatusNotFound)

		Consistently(func() string {
			resp, err := serverHelper.GetLibraries("")
			if err != nil {
				return ""
			}
			var list service.LibraryList
			helpers.DecodeJSON(resp, &list)
			return list.RunID
		}, 3*time.Second, 500*time.Millisecond).Should(Equal(first.RunID))
	})
})
