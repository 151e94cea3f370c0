package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/franksops/pixport/catalog"
	"github.com/franksops/pixport/engine"
	"github.com/franksops/pixport/provider"
	"github.com/franksops/pixport/report"
	"github.com/franksops/pixport/store"
)

const recentRuns = 10

type exportRequest struct {
	Codes      []string `json:"codes"`
	SearchType string   `json:"search_type"`
}

type localUploadRequest struct {
	FolderPath       string `json:"folder_path"`
	CloudinaryFolder string `json:"cloudinary_folder"`
	MaxWorkers       *int   `json:"max_workers"`
}

type dropboxUploadRequest struct {
	DropboxPath      string `json:"dropbox_path"`
	CloudinaryFolder string `json:"cloudinary_folder"`
	MaxWorkers       *int   `json:"max_workers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{}

	if s.catalog != nil {
		stats, err := s.catalog.Stats(r.Context())
		if err != nil {
			slog.Error("dashboard stats query failed", "error", err)
			payload["stats_error"] = err.Error()
		} else {
			payload["stats"] = stats
		}
	}

	if s.history != nil {
		runs, err := s.history.ListRuns(recentRuns)
		if err != nil {
			slog.Error("run history lookup failed", "error", err)
		} else {
			payload["recent_runs"] = runs
		}
	}

	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSearchExport(w http.ResponseWriter, r *http.Request) {
	mode, codes, ok := s.decodeExport(w, r)
	if !ok {
		return
	}

	staging, err := os.MkdirTemp(s.exportDir, "search-export-")
	if err != nil {
		http.Error(w, "could not create staging directory", http.StatusInternalServerError)
		return
	}
	defer removeAll(staging)

	summary, err := s.catalog.ExportComprehensive(r.Context(), codes, mode, staging)
	if err != nil {
		slog.Error("catalog export failed", "error", err)
		http.Error(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.recordRun(store.RunRecord{
		Kind:       store.KindCatalogExport,
		Target:     string(mode),
		Total:      len(codes),
		Successful: summary.Found,
		Failed:     summary.NotFound,
		StartedAt:  time.Now().UTC(),
	})

	s.sendZip(w, staging, fmt.Sprintf("export_%s.zip", timestamp()))
}

func (s *Server) handleImagesExport(w http.ResponseWriter, r *http.Request) {
	mode, codes, ok := s.decodeExport(w, r)
	if !ok {
		return
	}

	staging, err := os.MkdirTemp(s.exportDir, "images-export-")
	if err != nil {
		http.Error(w, "could not create staging directory", http.StatusInternalServerError)
		return
	}
	defer removeAll(staging)

	summary, err := s.catalog.ExportImages(r.Context(), codes, mode, staging)
	if err != nil {
		slog.Error("image export failed", "error", err)
		http.Error(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.recordRun(store.RunRecord{
		Kind:       store.KindImageExport,
		Target:     string(mode),
		Total:      len(codes),
		Successful: summary.Found,
		Failed:     summary.NotFound,
		StartedAt:  time.Now().UTC(),
	})

	s.sendZip(w, staging, fmt.Sprintf("images_%s.zip", timestamp()))
}

func (s *Server) handleLocalUpload(w http.ResponseWriter, r *http.Request) {
	var req localUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.FolderPath == "" {
		http.Error(w, "folder_path is required", http.StatusBadRequest)
		return
	}
	if s.localEng == nil {
		http.Error(w, "local uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	items, err := s.localSrc.Enumerate(r.Context(), req.FolderPath)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			http.Error(w, "folder not found: "+req.FolderPath, http.StatusNotFound)
			return
		}
		http.Error(w, "could not list folder: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(items) == 0 {
		http.Error(w, "no supported images in "+req.FolderPath, http.StatusBadRequest)
		return
	}

	s.runTransfer(w, r, s.localEng, items, transferParams{
		kind:    store.KindLocalUpload,
		target:  req.FolderPath,
		folder:  req.CloudinaryFolder,
		workers: req.MaxWorkers,
	})
}

func (s *Server) handleDropboxUpload(w http.ResponseWriter, r *http.Request) {
	var req dropboxUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.DropboxPath == "" {
		http.Error(w, "dropbox_path is required", http.StatusBadRequest)
		return
	}
	if s.dropboxEng == nil {
		http.Error(w, "dropbox uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	items, err := s.dropboxSrc.Enumerate(r.Context(), req.DropboxPath)
	if err != nil {
		slog.Error("dropbox listing failed", "path", req.DropboxPath, "error", err)
		http.Error(w, "could not list dropbox folder: "+err.Error(), http.StatusBadGateway)
		return
	}
	if len(items) == 0 {
		http.Error(w, "no supported images in "+req.DropboxPath, http.StatusBadRequest)
		return
	}

	s.runTransfer(w, r, s.dropboxEng, items, transferParams{
		kind:    store.KindDropboxUpload,
		target:  req.DropboxPath,
		folder:  req.CloudinaryFolder,
		workers: req.MaxWorkers,
	})
}

type transferParams struct {
	kind    store.RunKind
	target  string
	folder  string
	workers *int
}

func (s *Server) runTransfer(w http.ResponseWriter, r *http.Request, eng transferEngine, items []provider.Item, p transferParams) {
	folder := p.folder
	if folder == "" {
		folder = s.defaultFolder
	}
	workers := s.defaultWorkers
	if p.workers != nil {
		workers = *p.workers
	}

	started := time.Now().UTC()
	outcomes, snapshot, err := eng.TransferAll(r.Context(), items, folder, workers)
	if err != nil {
		if errors.Is(err, engine.ErrNoWorkers) {
			http.Error(w, "max_workers must be at least 1", http.StatusBadRequest)
			return
		}
		slog.Error("transfer failed", "kind", string(p.kind), "error", err)
		http.Error(w, "transfer failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Name < outcomes[j].Name })

	s.recordRun(store.RunRecord{
		Kind:       p.kind,
		Target:     p.target,
		Total:      snapshot.Total,
		Successful: snapshot.Successful,
		Failed:     snapshot.Failed,
		StartedAt:  started,
	})

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=upload_results_%s.csv", timestamp()))
	if err := report.WriteTransferResults(w, outcomes); err != nil {
		slog.Error("result csv write failed", "error", err)
	}
}

func (s *Server) handleDropboxFolders(w http.ResponseWriter, r *http.Request) {
	if s.browser == nil {
		http.Error(w, "dropbox is not configured", http.StatusServiceUnavailable)
		return
	}
	tree, err := s.browser.FolderTree(r.Context())
	if err != nil {
		slog.Error("dropbox folder listing failed", "error", err)
		http.Error(w, "could not list dropbox folders: "+err.Error(), http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

func (s *Server) handleCloudinaryResources(w http.ResponseWriter, r *http.Request) {
	if s.resources == nil {
		http.Error(w, "cloudinary is not configured", http.StatusServiceUnavailable)
		return
	}
	prefix := r.URL.Query().Get("prefix")
	assets, err := s.resources.ListResources(r.Context(), prefix)
	if err != nil {
		slog.Error("cloudinary listing failed", "prefix", prefix, "error", err)
		http.Error(w, "could not list resources: "+err.Error(), http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"resources": assets,
		"folders":   s.resources.RootFolders(r.Context()),
	})
}

// decodeExport parses an export request body and validates codes and mode.
func (s *Server) decodeExport(w http.ResponseWriter, r *http.Request) (catalog.SearchMode, []string, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return "", nil, false
	}

	var mode catalog.SearchMode
	switch req.SearchType {
	case "ean", "":
		mode = catalog.ModeEAN
	case "ref":
		mode = catalog.ModeREF
	default:
		http.Error(w, "search_type must be \"ean\" or \"ref\"", http.StatusBadRequest)
		return "", nil, false
	}

	codes := catalog.CleanCodes(req.Codes)
	if len(codes) == 0 {
		http.Error(w, "at least one code is required", http.StatusBadRequest)
		return "", nil, false
	}
	if s.catalog == nil {
		http.Error(w, "catalog database is not configured", http.StatusServiceUnavailable)
		return "", nil, false
	}
	return mode, codes, true
}

// sendZip bundles every file in dir and streams the archive.
func (s *Server) sendZip(w http.ResponseWriter, dir, name string) {
	zipPath := filepath.Join(dir, name)
	if err := report.ZipDir(dir, zipPath); err != nil {
		slog.Error("zip build failed", "error", err)
		http.Error(w, "could not build archive", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	f, err := os.Open(zipPath)
	if err != nil {
		http.Error(w, "could not read archive", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		slog.Error("archive stream failed", "error", err)
	}
}

func (s *Server) recordRun(rec store.RunRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveRun(&rec); err != nil {
		slog.Error("run history save failed", "kind", string(rec.Kind), "error", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("staging cleanup failed", "dir", dir, "error", err)
	}
}

func timestamp() string {
	return time.Now().Format("20060102_150405")
}
