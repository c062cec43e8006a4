package main

import (
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"sync"

	"github.com/Roshick/go-autumn-validation/auth"
	"github.com/Roshick/go-autumn-validation/config"
	weberrors "github.com/Roshick/go-autumn-validation/errors"
	"github.com/Roshick/go-autumn-validation/extract"
	"github.com/Roshick/go-autumn-validation/logging"
	"github.com/Roshick/go-autumn-validation/resiliency"
	"github.com/Roshick/go-autumn-validation/tracing"
	"github.com/Roshick/go-autumn-validation/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const createUserSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "pattern": "^[^<>]*$"},
		"tags": {"type": ["array", "null"], "uniqueItems": true}
	}
}`

type createUserRequest struct {
	Name  string   `json:"name" validate:"required,min=3,max=64"`
	Email string   `json:"email" validate:"required,email"`
	Age   int      `json:"age" validate:"gte=18,lte=150"`
	Tags  []string `json:"tags" validate:"max=5,dive,slug"`
}

type listUsersQuery struct {
	Page    int    `form:"page" validate:"omitempty,gte=1"`
	PerPage int    `form:"per_page" validate:"omitempty,lte=100"`
	Sort    string `form:"sort" validate:"omitempty,oneof=name age"`
	Tag     string `form:"tag" validate:"omitempty,slug"`
}

type userPath struct {
	UserID uuid.UUID `form:"userID" validate:"required"`
}

type preferencesForm struct {
	Language   string `json:"language" form:"language" validate:"required,oneof=en de fr"`
	Newsletter bool   `json:"newsletter" form:"newsletter"`
}

type tenantHeaders struct {
	TenantID uuid.UUID `form:"X-Tenant-ID" validate:"required"`
}

type userClaims struct {
	Subject string   `json:"sub" validate:"required"`
	Roles   []string `json:"roles" validate:"min=1,dive,oneof=admin user"`
}

type user struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Age         int              `json:"age"`
	Tags        []string         `json:"tags,omitempty"`
	Preferences *preferencesForm `json:"preferences,omitempty"`
}

type userStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]user
}

func newUserStore() *userStore {
	return &userStore{users: make(map[uuid.UUID]user)}
}

func (s *userStore) create(req createUserRequest) user {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := user{ID: uuid.New(), Name: req.Name, Email: req.Email, Age: req.Age, Tags: req.Tags}
	s.users[created.ID] = created
	return created
}

func (s *userStore) get(id uuid.UUID) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, ok := s.users[id]
	return found, ok
}

func (s *userStore) update(id uuid.UUID, fn func(*user)) (user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, ok := s.users[id]
	if !ok {
		return user{}, false
	}
	fn(&found)
	s.users[id] = found
	return found, true
}

func (s *userStore) list(query listUsersQuery) []user {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]user, 0, len(s.users))
	for _, u := range s.users {
		if query.Tag == "" || slices.Contains(u.Tags, query.Tag) {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b user) int {
		if query.Sort == "age" && a.Age != b.Age {
			return a.Age - b.Age
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})

	page, perPage := max(query.Page, 1), query.PerPage
	if perPage == 0 {
		perPage = 20
	}
	start := min((page-1)*perPage, len(users))
	return users[start:min(start+perPage, len(users))]
}

func newValidator() (validation.Validator, error) {
	structValidator, err := validation.NewStructValidator(nil)
	if err != nil {
		return nil, err
	}
	err = structValidator.RegisterRule("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}, "{0} must be a lowercase slug")
	if err != nil {
		return nil, err
	}
	return structValidator, nil
}

func newRouter(logger *slog.Logger, settings *config.Settings, tokenKeys jwt.ParseOption) (http.Handler, error) {
	structValidator, err := newValidator()
	if err != nil {
		return nil, err
	}
	schemaValidator, err := validation.NewSchemaValidator([]byte(createUserSchema))
	if err != nil {
		return nil, err
	}

	store := newUserStore()

	createUser := extract.NewJSONExtractor[createUserRequest](
		settings.JSONOptions().WithValidator(validation.Chain(structValidator, schemaValidator)),
	)
	listUsers := extract.NewQueryExtractor[listUsersQuery](
		settings.QueryOptions().WithValidator(structValidator),
	)
	userPathMiddleware := extract.NewPathMiddleware[userPath](nil)
	updatePreferences := extract.NewFormExtractor[preferencesForm](settings.FormOptions())
	tenantMiddleware := extract.NewHeaderMiddleware[tenantHeaders](nil)
	claims := extract.NewClaimsExtractor[userClaims](nil)

	authOptions := auth.DefaultAuthenticationMiddlewareOptions()
	authOptions.ParseOptions = []jwt.ParseOption{tokenKeys}

	r := chi.NewRouter()
	r.Use(resiliency.NewPanicRecoveryMiddleware(nil))
	r.Use(logging.NewContextLoggerMiddleware(&logging.ContextLoggerMiddlewareOptions{Logger: logger}))
	r.Use(tracing.NewRequestIDMiddleware(nil))

	r.Post("/users", createUser.HandlerFunc(func(w http.ResponseWriter, req *http.Request, body createUserRequest) {
		render.Status(req, http.StatusCreated)
		render.JSON(w, req, store.create(body))
	}))
	r.Get("/users", listUsers.HandlerFunc(func(w http.ResponseWriter, req *http.Request, query listUsersQuery) {
		render.JSON(w, req, store.list(query))
	}))

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Use(userPathMiddleware)

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			found, ok := store.get(extract.PathFromContext[userPath](req.Context()).UserID)
			if !ok {
				renderNotFound(w, req)
				return
			}
			render.JSON(w, req, found)
		})
		r.Put("/preferences", updatePreferences.HandlerFunc(func(w http.ResponseWriter, req *http.Request, form preferencesForm) {
			id := extract.PathFromContext[userPath](req.Context()).UserID
			updated, ok := store.update(id, func(u *user) { u.Preferences = &form })
			if !ok {
				renderNotFound(w, req)
				return
			}
			render.JSON(w, req, updated)
		}))
	})

	r.With(auth.NewAuthenticationMiddleware(authOptions), tenantMiddleware).
		Get("/me", claims.HandlerFunc(func(w http.ResponseWriter, req *http.Request, c userClaims) {
			render.JSON(w, req, map[string]any{
				"subject":  c.Subject,
				"roles":    c.Roles,
				"tenantId": extract.HeaderFromContext[tenantHeaders](req.Context()).TenantID,
			})
		}))

	return r, nil
}

func renderNotFound(w http.ResponseWriter, req *http.Request) {
	if err := render.Render(w, req, weberrors.NewNotFoundResponse("user not found")); err != nil {
		panic(err)
	}
}
