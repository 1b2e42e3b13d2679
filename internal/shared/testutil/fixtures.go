package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"escolacli/internal/config"
)

// Cleaned dataset used across package tests.
// Class 2025B / Português holds Carla (7.5, 9/10), Diego (9.0, 10/10) and
// Eva (5.0, 0/0 classes).
const (
	CleanStudents = `id,nome,turma
1,Ana,2025A
2,Bruno,2025A
3,Carla,2025B
4,Diego,2025B
5,Eva,2025B
`
	CleanSubjects = `id,nome
10,Matemática
20,Português
`
	CleanGrades = `aluno_id,disciplina_id,nota
1,10,8.0
2,10,6.5
3,20,7.5
4,20,9.0
5,20,5.0
3,10,7.0
`
	CleanAttendance = `aluno_id,disciplina_id,aulas_presencas,total_aulas
1,10,9,10
2,10,8,10
3,20,9,10
4,20,10,10
5,20,0,0
3,10,7,10
`
)

// Raw dataset with duplicates and missing values. The students table has
// 10 rows of which 2 are exact duplicates.
const (
	RawStudents = `id,nome,turma
1,Ana,2025A
2,Bruno,2025A
3,Carla,2025B
1,Ana,2025A
4,,2025B
5,Eva,NA
6,Fábio,2025A
3,Carla,2025B
7,Gabi,2025B
8,Hugo,
`
	RawSubjects = `id,nome
10,Matemática
20,Português
30,
20,Português
`
	RawGrades = `aluno_id,disciplina_id,nota
1,10,8
2,10,
3,20,7.5
3,20,7.5
4,20,NaN
`
	RawAttendance = `aluno_id,disciplina_id,aulas_presencas,total_aulas
1,10,9,10
2,10,,10
3,20,9.0,10
3,20,9.0,10
4,20,8,
`
)

// WriteFile writes content to dir/name and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteCleanDataset writes the cleaned fixture tables into baseDir/data
// and returns the data directory
func WriteCleanDataset(t *testing.T, baseDir string) string {
	t.Helper()

	dataDir := filepath.Join(baseDir, config.DataDirName)
	WriteFile(t, dataDir, config.CleanStudentsFile, CleanStudents)
	WriteFile(t, dataDir, config.CleanSubjectsFile, CleanSubjects)
	WriteFile(t, dataDir, config.CleanGradesFile, CleanGrades)
	WriteFile(t, dataDir, config.CleanAttendanceFile, CleanAttendance)
	return dataDir
}

// WriteRawDataset writes the raw fixture tables into baseDir/data
// and returns the data directory
func WriteRawDataset(t *testing.T, baseDir string) string {
	t.Helper()

	dataDir := filepath.Join(baseDir, config.DataDirName)
	WriteFile(t, dataDir, config.StudentsFile, RawStudents)
	WriteFile(t, dataDir, config.SubjectsFile, RawSubjects)
	WriteFile(t, dataDir, config.GradesFile, RawGrades)
	WriteFile(t, dataDir, config.AttendanceFile, RawAttendance)
	return dataDir
}

// CSV builds CSV text from a header and rows, one record per line
func CSV(header string, rows ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}
