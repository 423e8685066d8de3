package auth

import (
	"testing"
	"time"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-jwt-signing-32ch",
		AccessTokenExpiration: expiration,
		Issuer:                "powergrid-test",
	})
}

func testUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("ayesha@example.com", "s3cret-pass", "Ayesha Khan", role)
	require.NoError(t, err)
	return user
}

func TestIssueAndValidate(t *testing.T) {
	service := testService(time.Hour)
	user := testUser(t, identity.RoleCustomer)
	customerID := uuid.New()
	require.NoError(t, user.LinkCustomer(customerID))

	token, expiresAt, err := service.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "ayesha@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, customerID.String(), claims.CustomerID)
	assert.Empty(t, claims.EmployeeID)
}

func TestValidate_WrongSecret(t *testing.T) {
	service := testService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-signing-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "powergrid-test",
	})

	token, _, err := service.Issue(testUser(t, identity.RoleAdmin))
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_ExpiredToken(t *testing.T) {
	service := testService(-time.Minute)

	token, _, err := service.Issue(testUser(t, identity.RoleEmployee))
	require.NoError(t, err)

	_, err = service.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_Garbage(t *testing.T) {
	service := testService(time.Hour)

	_, err := service.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_Principal(t *testing.T) {
	service := testService(time.Hour)
	user := testUser(t, identity.RoleEmployee)
	employeeID := uuid.New()
	require.NoError(t, user.LinkEmployee(employeeID))

	token, _, err := service.Issue(user)
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	principal, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, identity.RoleEmployee, principal.Role)
	require.NotNil(t, principal.EmployeeID)
	assert.Equal(t, employeeID, *principal.EmployeeID)
	assert.Nil(t, principal.CustomerID)
	assert.True(t, principal.IsStaff())
}

func TestClaims_Principal_InvalidRole(t *testing.T) {
	claims := &Claims{UserID: uuid.New().String(), Role: "superuser"}

	_, err := claims.Principal()
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
