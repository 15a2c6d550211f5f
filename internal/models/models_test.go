package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAccess(t *testing.T) {
	cases := []struct {
		role UserRole
		path string
		want bool
	}{
		{RoleFieldCollector, "/field_collector/samples", true},
		{RoleFieldCollector, "/lab_tech/samples", false},
		{RoleLabTech, "/lab_tech", true},
		{RoleLabTech, "/lab_techx/samples", true},
		{RoleAdmin, "/admin/users", true},
		{RolePatient, "/admin/users", false},
		{RolePatient, "/patient/results", true},
		{RoleExtExpert, "/ext_expert/cases", true},
		{RoleExtExpert, "/profile", true},
		{UserRole("ghost"), "/profile", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanAccess(tc.role, tc.path), "%s -> %s", tc.role, tc.path)
	}
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "/field_collector", Namespace(RoleFieldCollector))
	assert.Empty(t, Namespace(UserRole("unknown")))
	assert.True(t, RolePatient.Valid())
	assert.False(t, UserRole("superuser").Valid())
}

func TestUserActionValid(t *testing.T) {
	for _, a := range []UserAction{UserActionApprove, UserActionReject, UserActionActivate, UserActionDeactivate} {
		assert.True(t, a.Valid())
	}
	assert.False(t, UserAction("promote").Valid())
}

func TestJoinName(t *testing.T) {
	middle := "Santos"
	blank := "  "
	assert.Equal(t, "Juan Santos Dela Cruz", JoinName("Juan", &middle, "Dela Cruz", &blank))
	assert.Equal(t, "Juan Dela Cruz", JoinName("Juan", nil, "Dela Cruz", nil))
}

func TestSampleImagesScanValue(t *testing.T) {
	images := SampleImages{{Filename: "a.jpg", ContentType: "image/jpeg", Size: 3, ImageID: "img-1"}}
	raw, err := images.Value()
	require.NoError(t, err)

	var decoded SampleImages
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, images, decoded)

	require.NoError(t, decoded.Scan(nil))
	assert.Empty(t, decoded)
	assert.Error(t, decoded.Scan(42))
}

func TestNewPatientResultHidesInternalFields(t *testing.T) {
	reviewer := "labtech1"
	sample := SampleCollection{
		ID:          "s1",
		SampleType:  SampleTypeStool,
		LabStatus:   LabStatusRejected,
		LabComments: "insufficient",
		ReviewedBy:  &reviewer,
		CollectedBy: "field1",
	}
	result := NewPatientResult(sample)
	assert.Equal(t, "s1", result.ID)
	assert.Equal(t, LabStatusRejected, result.LabStatus)
	assert.Equal(t, "insufficient", result.LabComments)
}
