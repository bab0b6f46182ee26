package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
)

func TestDoctorPredicate_Empty(t *testing.T) {
	sql, args, err := doctorPredicate(entity.DoctorFilter{Limit: 10})
	require.NoError(t, err)

	assert.Empty(t, sql)
	assert.Empty(t, args)
}

func TestDoctorPredicate_SingleField(t *testing.T) {
	sql, args, err := doctorPredicate(entity.DoctorFilter{Location: "cairo"})
	require.NoError(t, err)

	assert.Contains(t, sql, "location ILIKE ?")
	assert.NotContains(t, sql, "name")
	assert.Equal(t, []interface{}{"%cairo%"}, args)
}

func TestDoctorPredicate_AllFields(t *testing.T) {
	sql, args, err := doctorPredicate(entity.DoctorFilter{Name: "sara", Location: "giza", Query: "derm"})
	require.NoError(t, err)

	assert.Contains(t, sql, " AND ")
	assert.Contains(t, sql, "name ILIKE ? OR location ILIKE ?")
	assert.Equal(t, []interface{}{"%sara%", "%giza%", "%derm%", "%derm%"}, args)
}
