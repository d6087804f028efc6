package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"mutuelle/internal/audit"
	"mutuelle/internal/family"
	"mutuelle/pkg/domain"
	"mutuelle/pkg/requestcontext"
)

type testEnv struct {
	router chi.Router

	owner         requestcontext.ActorInfo
	administrator requestcontext.ActorInfo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		owner:         requestcontext.ActorInfo{ID: domain.NewMemberID(), Name: "Awa Diallo", Role: domain.RoleMember},
		administrator: requestcontext.ActorInfo{ID: domain.NewMemberID(), Name: "Fatou Kone", Role: domain.RoleAdministrator},
	}

	store := family.NewInMemoryStore()
	service := family.NewService(store, family.NewShardedTx(store),
		family.WithAuditRecorder(audit.NewRecorder(audit.NewInMemoryStore())),
	)

	actors := map[string]requestcontext.ActorInfo{
		"owner-token": env.owner,
		"admin-token": env.administrator,
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
			if actor, ok := actors[token]; ok {
				req = req.WithContext(requestcontext.WithActor(req.Context(), actor))
			}
			next.ServeHTTP(w, req)
		})
	})
	New(service, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func memberPayload(relation string) map[string]any {
	return map[string]any{
		"first_name":  "Aminata",
		"last_name":   "Diallo",
		"national_id": "NPI-12345",
		"birth_date":  "2015-04-02",
		"relation":    relation,
	}
}

func TestAddFamilyMember(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/family-members", "owner-token", memberPayload("child"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp MemberResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OwnerID != env.owner.ID.String() {
		t.Fatalf("expected owner defaulted to actor, got %s", resp.OwnerID)
	}
	if resp.Relation != "child" || resp.BirthDate != "2015-04-02" {
		t.Fatalf("unexpected member payload: %+v", resp)
	}
}

func TestAddSecondSpouseIs409(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/family-members", "owner-token", memberPayload("spouse_wife"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/family-members", "owner-token", memberPayload("spouse_husband"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second spouse, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cardinality_exceeded") {
		t.Fatalf("expected cardinality_exceeded error, got %s", rec.Body.String())
	}
}

func TestAddValidation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("unknown relation is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/family-members", "owner-token", memberPayload("cousin"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed birth date is 400", func(t *testing.T) {
		payload := memberPayload("child")
		payload["birth_date"] = "02/04/2015"
		rec := env.do(t, http.MethodPost, "/family-members", "owner-token", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestUpdateIsAdministratorOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/family-members", "owner-token", memberPayload("child"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created MemberResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	rec = env.do(t, http.MethodPut, "/family-members/"+created.ID, "owner-token", memberPayload("child"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member edit, got %d", rec.Code)
	}

	payload := memberPayload("child")
	payload["last_name"] = "Traoré"
	rec = env.do(t, http.MethodPut, "/family-members/"+created.ID, "admin-token", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin edit, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated MemberResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.LastName != "Traoré" {
		t.Fatalf("expected updated last name, got %q", updated.LastName)
	}
}

func TestListFamilyMembers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/family-members", "owner-token", memberPayload("child"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/family-members", "owner-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var members []MemberResponse
	if err := json.NewDecoder(rec.Body).Decode(&members); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}

	rec = env.do(t, http.MethodGet, "/family-members?owner_id="+env.owner.ID.String(), "admin-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin list, got %d", rec.Code)
	}
}
