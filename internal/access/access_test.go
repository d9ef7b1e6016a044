package access

import (
	"encoding/json"
	"testing"

	"cargodesk/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type principal struct {
	creator bool
	role    Role
	matrix  Matrix
}

func (p principal) IsCreator() bool { return p.creator }
func (p principal) RoleName() Role  { return p.role }
func (p principal) Grants() Matrix  { return p.matrix }

func TestAuthorizeCreatorBypassesMatrix(t *testing.T) {
	creator := principal{creator: true, role: RoleCook, matrix: Matrix{}}

	for _, r := range Resources() {
		for _, a := range []Action{Read, Write} {
			d := Authorize(creator, r, a)
			assert.True(t, d.Allowed, "%s.%s", r, a)
			assert.NoError(t, d.Err())
		}
	}
}

func TestAuthorizeDeniesMissingResource(t *testing.T) {
	p := principal{role: RoleAdmin, matrix: Matrix{Products: {Read: true, Write: true}}}

	assert.True(t, Authorize(p, Products, Write).Allowed)

	for _, a := range []Action{Read, Write} {
		d := Authorize(p, Orders, a)
		assert.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "orders."+string(a))
		assert.True(t, errs.Is(d.Err(), errs.KindForbidden))
	}
}

func TestAuthorizeReadOnlyOrders(t *testing.T) {
	p := principal{role: RoleAdmin, matrix: Matrix{Orders: {Read: true, Write: false}}}

	assert.True(t, Authorize(p, Orders, Read).Allowed)
	assert.False(t, Authorize(p, Orders, Write).Allowed)
}

func TestAuthorizeNilPrincipal(t *testing.T) {
	assert.False(t, Authorize(nil, Orders, Read).Allowed)
	assert.False(t, AuthorizeRole(nil, RoleManager).Allowed)
	assert.False(t, AuthorizeCreator(nil).Allowed)
}

func TestAuthorizeRole(t *testing.T) {
	manager := principal{role: RoleManager}
	cook := principal{role: RoleCook}

	assert.True(t, AuthorizeRole(manager, RoleManager, RoleAdmin).Allowed)
	d := AuthorizeRole(cook, RoleManager, RoleAdmin)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "COOK")
}

func TestAuthorizeCreator(t *testing.T) {
	assert.True(t, AuthorizeCreator(principal{creator: true}).Allowed)
	assert.False(t, AuthorizeCreator(principal{role: RoleManager, matrix: FullMatrix()}).Allowed)
}

func TestMatrixJSONDropsUnknownResources(t *testing.T) {
	var m Matrix
	err := json.Unmarshal([]byte(`{"orders":{"read":true},"billing":{"read":true,"write":true}}`), &m)
	require.NoError(t, err)

	assert.Len(t, m, 1)
	assert.True(t, m.Allows(Orders, Read))
	assert.False(t, m.Allows(Orders, Write))
}

func TestMatrixValidate(t *testing.T) {
	assert.NoError(t, DefaultStaffMatrix().Validate())
	assert.Error(t, Matrix{"billing": {Read: true}}.Validate())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCook.Valid())
	assert.False(t, Role("SUPER_ADMIN").Valid())
}
