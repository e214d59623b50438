package integration

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/test-integration/librarian-api/helpers"
)

func refNames(refs []library.Ref) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names
}

var _ = Describe("Library Partitioning", Label("libraries"), Ordered, func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	BeforeAll(func() {
		tempDir = createTempDir("libraries-test-")
		catalogFile := filepath.Join(tempDir, "SoundbanksInfo.json")
		helpers.WriteCatalogFile(catalogFile, helpers.CreateTestCatalog())

		configFile := helpers.WriteConfigYAML(tempDir, "windows", "file", map[string]string{
			"path": catalogFile,
		}, helpers.DefaultLibrariesYAML)

		storageDir := filepath.Join(tempDir, "storage")
		Expect(os.MkdirAll(storageDir, 0750)).To(Succeed())

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configFile, storageDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
		serverHelper.WaitForLibraries(10 * time.Second)
	})

	AfterAll(func() {
		_ = serverHelper.StopServer()
		cleanupTempDir(tempDir)
	})

	getLibrary := func(name string) *service.LibraryDetail {
		resp, err := serverHelper.GetLibrary(name)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var detail service.LibraryDetail
		helpers.DecodeJSON(resp, &detail)
		return &detail
	}

	It("should assign matching assets to the first library that claims them", func() {
		Expect(refNames(getLibrary("Weapons").Assets)).To(ConsistOf("Weapons", "Gunshot.wav"))
		Expect(refNames(getLibrary("Music").Assets)).To(ConsistOf("Music", "Theme.wav"))
	})

	It("should leave fallthrough matches for later libraries", func() {
		ui := getLibrary("UI")
		Expect(ui.Fallthrough).To(BeTrue())
		Expect(refNames(ui.Assets)).To(ConsistOf("Menus", "Click.wav"))

		base := getLibrary("Base")
		Expect(refNames(base.Assets)).To(ContainElements("Menus", "Click.wav", "Ambience.wav"))
		Expect(refNames(base.Assets)).NotTo(ContainElements("Weapons", "Music"))
	})

	It("should list sound banks before media", func() {
		base := getLibrary("Base")
		seenMedia := false
		for _, ref := range base.Assets {
			if ref.Type == library.RefTypeMedia {
				seenMedia = true
				continue
			}
			Expect(seenMedia).To(BeFalse(), "sound bank %s listed after media", ref.Name)
		}
	})

	It("should report the assets no consuming library claimed", func() {
		resp, err := serverHelper.GetLibraries("")
		Expect(err).NotTo(HaveOccurred())
		var list service.LibraryList
		helpers.DecodeJSON(resp, &list)
		Expect(list.RemainingCount).To(Equal(len(getLibrary("Base").Assets)))
	})

	It("should filter and page the library list", func() {
		resp, err := serverHelper.GetLibraries("name=" + url.QueryEscape("M*"))
		Expect(err).NotTo(HaveOccurred())
		var list service.LibraryList
		helpers.DecodeJSON(resp, &list)
		Expect(list.Libraries).To(HaveLen(1))
		Expect(list.Libraries[0].Name).To(Equal("Music"))

		resp, err = serverHelper.GetLibraries("limit=2")
		Expect(err).NotTo(HaveOccurred())
		var page service.LibraryList
		helpers.DecodeJSON(resp, &page)
		Expect(page.Libraries).To(HaveLen(2))
		Expect(page.NextCursor).NotTo(BeEmpty())

		resp, err = serverHelper.GetLibraries("limit=2&cursor=" + url.QueryEscape(page.NextCursor))
		Expect(err).NotTo(HaveOccurred())
		var next service.LibraryList
		helpers.DecodeJSON(resp, &next)
		Expect(next.Libraries).To(HaveLen(2))
		Expect(next.Libraries[0].Name).To(Equal("UI"))
		Expect(next.NextCursor).To(BeEmpty())
	})

	It("should preview a library against the current catalog", func() {
		resp, err := serverHelper.GetPreview("Music")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var preview service.LibraryPreview
		helpers.DecodeJSON(resp, &preview)
		Expect(refNames(preview.Assets)).To(ConsistOf("Music", "Theme.wav"))
	})

	It("should return 404 for unknown libraries", func() {
		resp, err := serverHelper.GetLibrary("Missing")
		Expect(err).NotTo(HaveOccurred())
		_ = resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

		resp, err = serverHelper.GetPreview("Missing")
		Expect(err).NotTo(HaveOccurred())
		_ = resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should reject invalid list parameters", func() {
		resp, err := serverHelper.GetLibraries("limit=-1")
		Expect(err).NotTo(HaveOccurred())
		_ = resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
