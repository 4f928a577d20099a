package dataprocessing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hospitalcli/pkg/contracts/domain"
)

const (
	acuteHeader     = ",unit,gender,age,height,weight,bmi,diagnosis,blood_test,ecg,ultrasound,mri,xray,children,months"
	maternityHeader = ",UNIT,Sex,age,height,weight,bmi,diagnosis,blood_test,ecg,ultrasound,mri,xray,children,months"
	athleticsHeader = ",Unit,Male/female,age,height,weight,bmi,diagnosis,blood_test,ecg,ultrasound,mri,xray,children,months"
	emptyRow        = ",,,,,,,,,,,,,,"
)

type patient struct {
	unit      string
	gender    string
	age       string
	height    string
	bmi       string
	diagnosis string
	bloodTest string
}

func (p patient) csv(index int) string {
	return fmt.Sprintf("%d,%s,%s,%s,%s,,%s,%s,%s,,,,,,",
		index, p.unit, p.gender, p.age, p.height, p.bmi, p.diagnosis, p.bloodTest)
}

func csvFor(header string, patients []patient, extra ...string) string {
	lines := []string{header}
	for i, p := range patients {
		lines = append(lines, p.csv(i))
	}
	lines = append(lines, extra...)
	return strings.Join(lines, "\n") + "\n"
}

func mustTable(t *testing.T, unit domain.Unit, content string) domain.Table {
	t.Helper()
	table, err := ReadTable(string(unit), strings.NewReader(content))
	require.NoError(t, err)
	return table
}

func mustSources(t *testing.T, acute, maternity, athletics string) Sources {
	t.Helper()
	return Sources{
		Acute:     mustTable(t, domain.UnitAcute, acute),
		Maternity: mustTable(t, domain.UnitMaternity, maternity),
		Athletics: mustTable(t, domain.UnitAthletics, athletics),
	}
}

func mustUnified(t *testing.T, src Sources) domain.Table {
	t.Helper()
	unified, _, err := BuildUnifiedTable(src)
	require.NoError(t, err)
	return unified
}

func repeat(n int, p patient) []patient {
	out := make([]patient, n)
	for i := range out {
		out[i] = p
	}
	return out
}

// scenarioSources is acute: 10 rows (3 cold), maternity: 5 rows, athletics: 5 rows.
func scenarioSources(t *testing.T) Sources {
	t.Helper()
	acute := append(
		repeat(3, patient{unit: "acute", gender: "man", age: "40", height: "1.8", diagnosis: "cold", bloodTest: "t"}),
		repeat(7, patient{unit: "acute", gender: "woman", age: "50", height: "1.6", diagnosis: "stomach"})...,
	)
	maternity := repeat(5, patient{unit: "maternity", age: "30", height: "1.65", bmi: "24.1", diagnosis: "pregnancy", bloodTest: "t"})
	athletics := append(
		repeat(2, patient{unit: "athletics", gender: "male", age: "20", height: "6.1", bmi: "22.5", diagnosis: "fracture"}),
		repeat(3, patient{unit: "athletics", gender: "female", age: "25", height: "5.5", bmi: "21", diagnosis: "sprain", bloodTest: "t"})...,
	)
	return mustSources(t,
		csvFor(acuteHeader, acute),
		csvFor(maternityHeader, maternity),
		csvFor(athleticsHeader, athletics),
	)
}
