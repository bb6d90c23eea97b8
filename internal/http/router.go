package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers and middleware into the HTTP surface.
// Protected is the authentication wrapper applied to every route except
// login; Middleware wraps the whole router, first entry outermost.
type RouterConfig struct {
	Auth       *AuthHandler
	Sessions   *SessionHandler
	Documents  *DocumentHandler
	Directory  *DirectoryHandler
	Requests   *RequestHandler
	Protected  func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guard := cfg.Protected
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	protected := func(h http.HandlerFunc) http.Handler { return guard(h) }

	if cfg.Auth != nil {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		logout := protected(cfg.Auth.Logout)
		mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			logout.ServeHTTP(w, r)
		})
	}

	if cfg.Sessions != nil {
		list := protected(cfg.Sessions.List)
		create := protected(cfg.Sessions.Create)
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				list.ServeHTTP(w, r)
			case http.MethodPost:
				create.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})

		bulk := protected(cfg.Sessions.BulkCreate)
		mux.HandleFunc("/sessions/bulk", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			bulk.ServeHTTP(w, r)
		})

		bulkInvite := protected(cfg.Sessions.BulkInvite)
		mux.HandleFunc("/sessions/bulk-invite", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			bulkInvite.ServeHTTP(w, r)
		})

		respond := protected(cfg.Sessions.Respond)
		mux.HandleFunc("/sessions/respond", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			respond.ServeHTTP(w, r)
		})

		update := protected(cfg.Sessions.Update)
		mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/sessions/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			r = r.WithContext(ContextWithSessionID(r.Context(), id))
			update.ServeHTTP(w, r)
		})
	}

	if cfg.Documents != nil {
		uploadCV := protected(cfg.Documents.UploadCV)
		deleteCV := protected(cfg.Documents.DeleteCV)
		mux.HandleFunc("/faculty/cv", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				uploadCV.ServeHTTP(w, r)
			case http.MethodDelete:
				deleteCV.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		})
		mux.HandleFunc("/faculty/cv/replace", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			uploadCV.ServeHTTP(w, r)
		})

		approveCV := protected(cfg.Documents.ApproveCV)
		mux.HandleFunc("/faculty/cv/approve", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			approveCV.ServeHTTP(w, r)
		})

		uploadPresentations := protected(cfg.Documents.UploadPresentations)
		mux.HandleFunc("/faculty/presentations/upload", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			uploadPresentations.ServeHTTP(w, r)
		})

		listPresentations := protected(cfg.Documents.ListPresentations)
		deletePresentation := protected(cfg.Documents.DeletePresentation)
		mux.HandleFunc("/faculty/presentations", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				listPresentations.ServeHTTP(w, r)
			case http.MethodDelete:
				deletePresentation.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})

		documents := protected(cfg.Documents.ListFacultyDocuments)
		mux.HandleFunc("/faculty/documents", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			documents.ServeHTTP(w, r)
		})
	}

	if cfg.Directory != nil {
		listRooms := protected(cfg.Directory.ListRooms)
		createRoom := protected(cfg.Directory.CreateRoom)
		mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				listRooms.ServeHTTP(w, r)
			case http.MethodPost:
				createRoom.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})

		listEvents := protected(cfg.Directory.ListEvents)
		createEvent := protected(cfg.Directory.CreateEvent)
		mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				listEvents.ServeHTTP(w, r)
			case http.MethodPost:
				createEvent.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})

		listFaculty := protected(cfg.Directory.ListFaculty)
		createFaculty := protected(cfg.Directory.CreateFaculty)
		mux.HandleFunc("/faculties", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				listFaculty.ServeHTTP(w, r)
			case http.MethodPost:
				createFaculty.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.Requests != nil {
		submitFeedback := protected(cfg.Requests.SubmitFeedback)
		listFeedback := protected(cfg.Requests.ListFeedback)
		mux.HandleFunc("/feedback", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				listFeedback.ServeHTTP(w, r)
			case http.MethodPost:
				submitFeedback.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})

		submitAccommodation := protected(cfg.Requests.SubmitAccommodation)
		listAccommodation := protected(cfg.Requests.ListAccommodation)
		mux.HandleFunc("/accommodation", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				listAccommodation.ServeHTTP(w, r)
			case http.MethodPost:
				submitAccommodation.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
