package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	for _, in := range []string{"acute", " Acute ", "ACUTE"} {
		u, err := ParseUnit(in)
		require.NoError(t, err)
		assert.Equal(t, UnitAcute, u)
	}
	_, err := ParseUnit("general")
	assert.Error(t, err)

	assert.Equal(t, "Maternity", UnitMaternity.Title())
	assert.Equal(t, "", Unit("").Title())
}

func TestValueFloat(t *testing.T) {
	f, ok := Present(" 1.75 ").Float()
	assert.True(t, ok)
	assert.Equal(t, 1.75, f)

	_, ok = Present("t").Float()
	assert.False(t, ok)
	_, ok = Absent.Float()
	assert.False(t, ok)

	assert.Equal(t, "NaN", Absent.String())
	assert.False(t, Absent.Is(""))
	assert.True(t, Present("").Is(""))
}

func sample() Table {
	t := NewTable("t", []string{"unit", "age"})
	t.Rows = [][]Value{
		{Present("acute"), Present("40")},
		{Present("maternity"), Absent},
		{Present("acute"), Present("x")},
	}
	return t
}

func TestTableAccessors(t *testing.T) {
	tbl := sample()

	rows, cols := tbl.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1, tbl.Index("age"))
	assert.Equal(t, -1, tbl.Index("bmi"))
	assert.Nil(t, tbl.Column("bmi"))
	assert.Equal(t, Absent, tbl.Cell(1, "age"))
	assert.Equal(t, Absent, tbl.Cell(9, "age"))
	assert.Equal(t, []float64{40}, tbl.Floats("age"))
	assert.Equal(t, 2, tbl.Where("unit", "acute").Len())
	assert.Equal(t, 0, tbl.Where("bmi", "1").Len())
	assert.Equal(t, 2, tbl.Head(2).Len())
	assert.Equal(t, 3, tbl.Head(10).Len())
	assert.Equal(t, 0, tbl.Head(-1).Len())
}

func TestTableCloneIsIndependent(t *testing.T) {
	tbl := sample()
	c := tbl.Clone()
	c.Rows[0][0] = Present("athletics")
	c.Columns[0] = "changed"

	assert.Equal(t, "acute", tbl.Rows[0][0].Text)
	assert.Equal(t, "unit", tbl.Columns[0])

	f := tbl.Filter(func(row []Value) bool { return true })
	f.Rows[1][0] = Present("x")
	assert.Equal(t, "maternity", tbl.Rows[1][0].Text)
}

func TestAggregate(t *testing.T) {
	assert.False(t, DefinedAggregate(math.NaN()).Defined)
	assert.False(t, DefinedAggregate(math.Inf(1)).Defined)
	assert.True(t, math.IsNaN(Undefined.Float()))

	a := DefinedAggregate(0.66666)
	assert.Equal(t, 0.667, a.Round(3).Value)
	assert.Equal(t, Undefined, Undefined.Round(3))

	zero := DefinedAggregate(0)
	assert.True(t, zero.Defined)
	assert.NotEqual(t, Undefined, zero)
}

func TestAggregateJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Aggregate{"a": DefinedAggregate(2.5), "b": Undefined})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2.5,"b":null}`, string(data))

	var back map[string]Aggregate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, DefinedAggregate(2.5), back["a"])
	assert.Equal(t, Undefined, back["b"])
}

func TestAnswersCount(t *testing.T) {
	a := Answers{UnitCounts: []UnitCount{{UnitAcute, 10}, {UnitMaternity, 5}}}
	assert.Equal(t, 10, a.Count(UnitAcute))
	assert.Equal(t, 0, a.Count(UnitAthletics))
}
