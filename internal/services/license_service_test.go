package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
)

func TestLicenseServiceCreateNormalises(t *testing.T) {
	f := setupFleetServices(t)
	ctx := context.Background()
	holder := f.mustEmployee(t, "Joe", "Park")

	license, err := f.licenses.Create(ctx, LicenseInput{EmployeeID: holder.ID, Number: " ab-123 ", Class: "ce"})
	require.NoError(t, err)
	require.Equal(t, "AB-123", license.Number)
	require.Equal(t, "CE", license.Class)
	require.NotNil(t, license.Employee)

	_, err = f.licenses.Create(ctx, LicenseInput{EmployeeID: holder.ID, Number: "AB-123", Class: "B"})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.licenses.Create(ctx, LicenseInput{EmployeeID: holder.ID, Number: "X-1"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.licenses.Create(ctx, LicenseInput{EmployeeID: "missing", Number: "X-2", Class: "B"})
	require.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestLicenseServiceListAndUpdate(t *testing.T) {
	f := setupFleetServices(t)
	ctx := context.Background()
	holder := f.mustEmployee(t, "Joe", "Park")
	other := f.mustEmployee(t, "Kim", "Ro")

	for _, number := range []string{"L-3", "L-1", "L-2"} {
		_, err := f.licenses.Create(ctx, LicenseInput{EmployeeID: holder.ID, Number: number, Class: "C"})
		require.NoError(t, err)
	}
	_, err := f.licenses.Create(ctx, LicenseInput{EmployeeID: other.ID, Number: "M-1", Class: "B"})
	require.NoError(t, err)

	result, err := f.licenses.List(ctx, ListLicensesOptions{ListOptions: ListOptions{Page: 1, PerPage: 2}, EmployeeID: holder.ID})
	require.NoError(t, err)
	require.Equal(t, 3, result.Window.TotalItems())
	require.Equal(t, 2, result.Window.TotalPages())
	require.Len(t, result.Items, 2)
	require.Equal(t, "L-1", result.Items[0].Number)

	byClass, err := f.licenses.List(ctx, ListLicensesOptions{ListOptions: ListOptions{Page: 1, PerPage: 10}, Class: "b"})
	require.NoError(t, err)
	require.Len(t, byClass.Items, 1)

	class := "ce"
	updated, err := f.licenses.Update(ctx, result.Items[0].ID, UpdateLicenseInput{Class: &class})
	require.NoError(t, err)
	require.Equal(t, "CE", updated.Class)

	taken := "m-1"
	_, err = f.licenses.Update(ctx, result.Items[0].ID, UpdateLicenseInput{Number: &taken})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, f.licenses.Delete(ctx, updated.ID))
	_, err = f.licenses.Get(ctx, updated.ID)
	require.ErrorIs(t, err, ErrLicenseNotFound)
}

func TestLicenseServiceExpiringBetween(t *testing.T) {
	f := setupFleetServices(t)
	ctx := context.Background()
	holder := f.mustEmployee(t, "Joe", "Park")

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	first := now.AddDate(0, 0, 20)
	second := now.AddDate(0, 0, 5)
	outside := now.AddDate(0, 2, 0)

	a, err := f.licenses.Create(ctx, LicenseInput{EmployeeID: holder.ID, Number: "E-1", Class: "C", ExpiresAt: &first})
	require.NoError(t, err)
	b, err := f.licenses.Create(ctx, LicenseInput{EmployeeID: holder.ID, Number: "E-2", Class: "C", ExpiresAt: &second})
	require.NoError(t, err)
	_, err = f.licenses.Create(ctx, LicenseInput{EmployeeID: holder.ID, Number: "E-3", Class: "C", ExpiresAt: &outside})
	require.NoError(t, err)

	found, err := f.licenses.ExpiringBetween(ctx, now, now.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, b.ID, found[0].ID)
	require.Equal(t, a.ID, found[1].ID)
}
