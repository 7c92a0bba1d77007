package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/permission"
	apphttp "github.com/jhoicas/Repuestos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Repuestos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "repuestos-api-test"
	testExpMin    = 60
)

// memUserRepo implementación mínima en memoria del puerto de usuarios: lo que
// RequirePermission necesita para resolver al actor en cada petición.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (r *memUserRepo) put(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *memUserRepo) Create(u *entity.User) error { r.put(u); return nil }

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(limit, offset int) ([]*entity.User, error) { return nil, nil }
func (r *memUserRepo) Count() (int, error)                            { return len(r.users), nil }
func (r *memUserRepo) Update(u *entity.User) error                    { r.put(u); return nil }

func (r *memUserRepo) UpdatePermissions(id string, permissions []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Permissions = permissions
		u.UpdatedAt = at
	}
	return nil
}

func (r *memUserRepo) SoftDelete(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.DeletedAt = &at
		u.Status = "inactive"
	}
	return nil
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequirePermission contra el repo en memoria
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(repo *memUserRepo, perms ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequirePermission(repo, perms...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"user_id": apphttp.GetUserID(c),
			})
		},
	)
	return app
}

// seedUser registra un usuario activo con los permisos otorgados.
func seedUser(repo *memUserRepo, id, role string, granted ...string) {
	now := time.Now()
	repo.put(&entity.User{
		ID:          id,
		Email:       id + "@taller.test",
		Role:        role,
		Status:      "active",
		Permissions: granted,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// tokenFor genera un JWT firmado para el usuario.
func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: El usuario tiene el permiso otorgado → debe pasar (HTTP 200).
func TestRequirePermission_PermisoOtorgado_Pasa(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(repo, "u-bodega", entity.RoleWarehouse, permission.ReceivingsConfirm)
	app := buildTestApp(repo, permission.ReceivingsConfirm)

	resp := doRequest(t, app, tokenFor(t, "u-bodega", entity.RoleWarehouse))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"usuario con el permiso debe acceder")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "u-bodega", body["user_id"])
}

// Caso 2: Admin sin permisos explícitos → pasa por el rol.
func TestRequirePermission_AdminSinPermisosExplicitos_Pasa(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(repo, "u-admin", entity.RoleAdmin)
	app := buildTestApp(repo, permission.ManageUsers)

	resp := doRequest(t, app, tokenFor(t, "u-admin", entity.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"admin implica el catálogo completo de permisos")
}

// Caso 3: El usuario no tiene el permiso → HTTP 403 FORBIDDEN.
func TestRequirePermission_SinPermiso_Retorna403(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(repo, "u-solicitante", entity.RoleRequester, permission.RequestsCreate)
	app := buildTestApp(repo, permission.ReceivingsConfirm)

	resp := doRequest(t, app, tokenFor(t, "u-solicitante", entity.RoleRequester))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN",
		"la respuesta de error debe incluir el código FORBIDDEN")
}

// Caso 4: El permiso fue revocado después de emitir el token → HTTP 403.
// La autorización se resuelve contra la fila vigente, no contra el token.
func TestRequirePermission_PermisoRevocado_TokenVigenteNoSirve(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(repo, "u-bodega", entity.RoleWarehouse, permission.OutgoingsComplete)
	app := buildTestApp(repo, permission.OutgoingsComplete)

	token := tokenFor(t, "u-bodega", entity.RoleWarehouse)

	resp := doRequest(t, app, token)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "antes de revocar debe pasar")

	require.NoError(t, repo.UpdatePermissions("u-bodega", []string{}, time.Now()))

	resp = doRequest(t, app, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"revocar el permiso surte efecto con el mismo token")
}

// Caso 5: Usuario inactivo → HTTP 403 aunque sea admin.
func TestRequirePermission_UsuarioInactivo_Retorna403(t *testing.T) {
	repo := newMemUserRepo()
	now := time.Now()
	repo.put(&entity.User{
		ID:        "u-baja",
		Email:     "baja@taller.test",
		Role:      entity.RoleAdmin,
		Status:    "inactive",
		CreatedAt: now,
		UpdatedAt: now,
	})
	app := buildTestApp(repo, permission.PartsView)

	resp := doRequest(t, app, tokenFor(t, "u-baja", entity.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"usuario inactivo nunca está autorizado")
}

// Caso 6: Usuario borrado (el repo devuelve nil) → HTTP 401.
func TestRequirePermission_UsuarioBorrado_Retorna401(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(repo, "u-borrado", entity.RoleWarehouse, permission.PartsView)
	require.NoError(t, repo.SoftDelete("u-borrado", time.Now()))
	app := buildTestApp(repo, permission.PartsView)

	resp := doRequest(t, app, tokenFor(t, "u-borrado", entity.RoleWarehouse))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 7: Basta con uno de varios permisos alternativos → HTTP 200.
func TestRequirePermission_AlgunoDeVarios_Pasa(t *testing.T) {
	repo := newMemUserRepo()
	seedUser(repo, "u-bodega", entity.RoleWarehouse, permission.MovementsView)
	app := buildTestApp(repo, permission.PartsView, permission.MovementsView)

	resp := doRequest(t, app, tokenFor(t, "u-bodega", entity.RoleWarehouse))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, "u-claims", entity.RoleWarehouse))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-claims", body["user_id"])
	assert.Equal(t, entity.RoleWarehouse, body["role"])
}

// Caso: Sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	repo := newMemUserRepo()
	app := buildTestApp(repo, permission.PartsView)

	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

// Caso: Token malformado → HTTP 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	repo := newMemUserRepo()
	app := buildTestApp(repo, permission.PartsView)

	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Caso: Token firmado con otro secret → HTTP 401.
func TestAuthMiddleware_SecretIncorrecto_Retorna401(t *testing.T) {
	repo := newMemUserRepo()
	app := buildTestApp(repo, permission.PartsView)

	tok, err := pkgjwt.Generate("otro-secret-completamente-distinto", "u-x", entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
