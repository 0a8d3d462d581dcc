package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/prepared/internal/catalog"
	"github.com/mind-engage/prepared/internal/quiz"
	"github.com/mind-engage/prepared/internal/storage"
	"github.com/mind-engage/prepared/internal/viewer"
)

type publicQuestion struct {
	ID      string        `json:"id"`
	Prompt  string        `json:"prompt"`
	Options []quiz.Option `json:"options"`
}

// moduleView is a module as served to learners: answer keys and
// explanations are stripped.
type moduleView struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Objectives  []string               `json:"objectives,omitempty"`
	Videos      []catalog.VideoItem    `json:"videos"`
	Documents   []catalog.DocumentItem `json:"documents"`
	Questions   []publicQuestion       `json:"questions"`
}

func newModuleView(m *catalog.Module) moduleView {
	v := moduleView{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Objectives:  m.Objectives,
		Videos:      m.Videos,
		Documents:   m.Documents,
		Questions:   make([]publicQuestion, len(m.Questions)),
	}
	for i, q := range m.Questions {
		v.Questions[i] = publicQuestion{ID: q.ID, Prompt: q.Prompt, Options: quiz.Options(q)}
	}
	return v
}

// MountModules serves the read-only catalog under r.
func MountModules(r chi.Router, cat *catalog.Catalog, bs storage.BlobStore) {
	r.Get("/", ListModulesHandler(cat))
	r.Get("/{moduleID}", GetModuleHandler(cat))
	r.Get("/{moduleID}/documents/{documentID}", DownloadDocumentHandler(cat, bs))
}

func ListModulesHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat.Summaries())
	}
}

func GetModuleHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "moduleID")
		m, ok := cat.Module(id)
		if !ok {
			writeError(w, fmt.Errorf("module %q: %w", id, viewer.ErrNotFound))
			return
		}
		writeJSON(w, http.StatusOK, newModuleView(m))
	}
}

// DownloadDocumentHandler redirects absolute download references and streams
// relative ones from the blob store.
func DownloadDocumentHandler(cat *catalog.Catalog, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID := chi.URLParam(r, "moduleID")
		m, ok := cat.Module(moduleID)
		if !ok {
			writeError(w, fmt.Errorf("module %q: %w", moduleID, viewer.ErrNotFound))
			return
		}
		docID := chi.URLParam(r, "documentID")
		doc, ok := m.Document(docID)
		if !ok {
			writeError(w, fmt.Errorf("document %q in module %q: %w", docID, moduleID, viewer.ErrNotFound))
			return
		}

		if storage.IsRemote(doc.DownloadRef) {
			http.Redirect(w, r, doc.DownloadRef, http.StatusFound)
			return
		}
		rc, err := bs.Get(doc.DownloadRef)
		if err != nil {
			writeError(w, err)
			return
		}
		defer rc.Close()

		ctype := mime.TypeByExtension(path.Ext(doc.DownloadRef))
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ctype)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(doc.DownloadRef)))
		_, _ = io.Copy(w, rc)
	}
}
