// Package shopwaretest provides an in-memory catalog that speaks the subset
// of the Shopware Admin API the client uses.
package shopwaretest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/catalog-discount-service/internal/filter"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

const (
	ClientID     = "test-client"
	ClientSecret = "test-secret"
)

// Product is a catalog product plus the attributes search filters on.
type Product struct {
	models.Product
	ManufacturerID string
	CategoryIDs    []string
	TagIDs         []string
}

// Attribute is a manufacturer, category or tag entry.
type Attribute struct {
	ID     string
	Name   string
	Active *bool
}

// Patch is one recorded PATCH /api/product/{id} body.
type Patch struct {
	ProductID string
	Body      map[string]any
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	products   map[string]*Product
	order      []string
	attributes map[models.ConditionType][]Attribute
	tokens     map[string]bool
	authCalls  int
	searches   int
	patches    []Patch
	failPatch  map[string]int

	// ExpiresIn is returned as the token lifetime in seconds.
	ExpiresIn int
}

func NewServer() *Server {
	s := &Server{
		products:   make(map[string]*Product),
		attributes: make(map[models.ConditionType][]Attribute),
		tokens:     make(map[string]bool),
		failPatch:  make(map[string]int),
		ExpiresIn:  600,
	}

	r := chi.NewRouter()
	r.Post("/api/oauth/token", s.handleToken)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/api/search/product", s.handleSearch)
		r.Get("/api/product/{id}", s.handleGetProduct)
		r.Patch("/api/product/{id}", s.handlePatch)
		r.Get("/api/product-manufacturer", s.handleAttributes(models.ConditionManufacturer))
		r.Get("/api/category", s.handleAttributes(models.ConditionCategory))
		r.Get("/api/tag", s.handleAttributes(models.ConditionTag))
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Credentials returns credentials this server accepts.
func (s *Server) Credentials() models.Credentials {
	return models.Credentials{ShopURL: s.URL, ClientID: ClientID, ClientSecret: ClientSecret}
}

func (s *Server) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	cp := p
	s.products[p.ID] = &cp
}

func (s *Server) AddAttribute(kind models.ConditionType, a Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes[kind] = append(s.attributes[kind], a)
}

// FailPatch makes PATCHes of id answer with status.
func (s *Server) FailPatch(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPatch[id] = status
}

// RevokeTokens forgets every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]bool)
}

func (s *Server) Product(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, false
	}
	return p.Product, true
}

func (s *Server) AuthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authCalls
}

func (s *Server) Searches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches
}

func (s *Server) Patches() []Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.patches)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GrantType    string `json:"grant_type"`
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid body"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authCalls++

	if req.GrantType != "client_credentials" || req.ClientID != ClientID || req.ClientSecret != ClientSecret {
		writeJSON(w, http.StatusUnauthorized, errorBody("The user credentials were incorrect."))
		return
	}

	tok := fmt.Sprintf("tok-%d", s.authCalls)
	s.tokens[tok] = true
	writeJSON(w, http.StatusOK, map[string]any{
		"token_type":   "Bearer",
		"expires_in":   s.ExpiresIn,
		"access_token": tok,
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		ok := s.tokens[tok]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody("The resource owner or authorization server denied the request."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit  int          `json:"limit"`
		Page   int          `json:"page"`
		Filter filter.Query `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid criteria"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches++

	matched := make([]models.Product, 0)
	for _, id := range s.order {
		p := s.products[id]
		if matchAll(p, req.Filter) {
			matched = append(matched, p.Product)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(matched),
		"data":  paginate(matched, req.Limit, req.Page),
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	p, ok := s.products[id]
	var out models.Product
	if ok {
		out = p.Product
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("product not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	var typed struct {
		Price []models.PriceTier `json:"price"`
	}
	b, _ := json.Marshal(raw)
	_ = json.Unmarshal(b, &typed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches = append(s.patches, Patch{ProductID: id, Body: raw})

	if status, ok := s.failPatch[id]; ok {
		writeJSON(w, status, errorBody("write failed"))
		return
	}
	p, ok := s.products[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("product not found"))
		return
	}
	p.Price = typed.Price
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttributes(kind models.ConditionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		s.mu.Lock()
		items := make([]map[string]any, 0, len(s.attributes[kind]))
		for _, a := range s.attributes[kind] {
			it := map[string]any{"id": a.ID, "name": a.Name}
			if a.Active != nil {
				it["active"] = *a.Active
			}
			items = append(items, it)
		}
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"total": len(items),
			"data":  paginate(items, limit, page),
		})
	}
}

func matchAll(p *Product, q filter.Query) bool {
	for _, f := range q {
		if !match(p, f) {
			return false
		}
	}
	return true
}

func match(p *Product, f filter.Filter) bool {
	switch f.Type {
	case filter.TypeMulti:
		if strings.EqualFold(f.Operator, "OR") {
			for _, sub := range f.Queries {
				if match(p, sub) {
					return true
				}
			}
			return false
		}
		return matchAll(p, f.Queries)
	case filter.TypeEquals:
		v, _ := f.Value.(string)
		switch f.Field {
		case filter.FieldManufacturerID:
			return p.ManufacturerID == v
		case filter.FieldCategoryTree:
			return slices.Contains(p.CategoryIDs, v)
		}
	case filter.TypeContains:
		if f.Field != filter.FieldTagIDs {
			return false
		}
		vals, _ := f.Value.([]any)
		for _, v := range vals {
			if s, ok := v.(string); ok && slices.Contains(p.TagIDs, s) {
				return true
			}
		}
	}
	return false
}

func paginate[T any](items []T, limit, page int) []T {
	if limit <= 0 {
		limit = 25
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

func errorBody(detail string) map[string]any {
	return map[string]any{"errors": []map[string]string{{"detail": detail}}}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
