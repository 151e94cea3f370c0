package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/franksops/pixport/catalog"
	"github.com/franksops/pixport/engine"
	"github.com/franksops/pixport/provider"
	"github.com/franksops/pixport/store"
)

// catalogStore is the slice of the catalog the handlers consume.
type catalogStore interface {
	Stats(ctx context.Context) (*catalog.DashboardStats, error)
	ExportComprehensive(ctx context.Context, codes []string, mode catalog.SearchMode, dir string) (*catalog.ExportSummary, error)
	ExportImages(ctx context.Context, codes []string, mode catalog.SearchMode, dir string) (*catalog.ExportSummary, error)
}

// transferEngine runs one upload batch.
type transferEngine interface {
	TransferAll(ctx context.Context, items []provider.Item, folder string, workers int) ([]engine.Outcome, engine.Snapshot, error)
}

// folderBrowser exposes the remote file-sharing hierarchy.
type folderBrowser interface {
	FolderTree(ctx context.Context) (provider.FolderStructure, error)
}

// resourceLister exposes the hosted assets of the object store.
type resourceLister interface {
	ListResources(ctx context.Context, prefix string) ([]provider.Resource, error)
	RootFolders(ctx context.Context) []string
}

// Server wires the HTTP surface of the tool.
type Server struct {
	router *mux.Router

	catalog catalogStore
	history store.Store

	localSrc   provider.Source
	localEng   transferEngine
	dropboxSrc provider.Source
	dropboxEng transferEngine
	browser    folderBrowser
	resources  resourceLister

	defaultFolder  string
	defaultWorkers int
	exportDir      string
}

// Options carries the collaborators a Server needs.
type Options struct {
	Catalog    catalogStore
	History    store.Store
	LocalSrc   provider.Source
	DropboxSrc provider.Source
	Uploader   provider.Uploader
	Browser    folderBrowser
	Resources  resourceLister

	DefaultFolder  string
	DefaultWorkers int
	ExportDir      string
}

// NewServer builds the router and its handlers.
func NewServer(opts Options) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		catalog:        opts.Catalog,
		history:        opts.History,
		localSrc:       opts.LocalSrc,
		dropboxSrc:     opts.DropboxSrc,
		browser:        opts.Browser,
		resources:      opts.Resources,
		defaultFolder:  opts.DefaultFolder,
		defaultWorkers: opts.DefaultWorkers,
		exportDir:      opts.ExportDir,
	}
	if s.defaultWorkers < 1 {
		s.defaultWorkers = engine.DefaultWorkers
	}
	if opts.LocalSrc != nil && opts.Uploader != nil {
		s.localEng = engine.New(opts.LocalSrc, opts.Uploader)
	}
	if opts.DropboxSrc != nil && opts.Uploader != nil {
		s.dropboxEng = engine.New(opts.DropboxSrc, opts.Uploader)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/dashboard", s.handleDashboard).Methods("GET")

	s.router.HandleFunc("/api/search/export", s.handleSearchExport).Methods("POST")
	s.router.HandleFunc("/api/images/export", s.handleImagesExport).Methods("POST")

	s.router.HandleFunc("/api/upload/local", s.handleLocalUpload).Methods("POST")
	s.router.HandleFunc("/api/upload/dropbox", s.handleDropboxUpload).Methods("POST")

	s.router.HandleFunc("/api/dropbox/folders", s.handleDropboxFolders).Methods("GET")
	s.router.HandleFunc("/api/cloudinary/resources", s.handleCloudinaryResources).Methods("GET")
}

// Router returns the configured handler for the HTTP server.
func (s *Server) Router() http.Handler {
	return s.router
}
