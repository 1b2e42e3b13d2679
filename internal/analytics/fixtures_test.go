package analytics

import (
	"escolacli/pkg/contracts/domain"
)

// fixtureDataset mirrors the cleaned fixture files.
// Class 2025B / Português holds Carla (7.5, 9/10), Diego (9.0, 10/10) and
// Eva (5.0, 0/0).
func fixtureDataset() *domain.Dataset {
	return &domain.Dataset{
		Students: []domain.Student{
			{ID: "1", Name: "Ana", Class: "2025A"},
			{ID: "2", Name: "Bruno", Class: "2025A"},
			{ID: "3", Name: "Carla", Class: "2025B"},
			{ID: "4", Name: "Diego", Class: "2025B"},
			{ID: "5", Name: "Eva", Class: "2025B"},
		},
		Subjects: []domain.Subject{
			{ID: "10", Name: "Matemática"},
			{ID: "20", Name: "Português"},
		},
		Grades: []domain.Grade{
			{StudentID: "1", SubjectID: "10", Value: 8.0},
			{StudentID: "2", SubjectID: "10", Value: 6.5},
			{StudentID: "3", SubjectID: "20", Value: 7.5},
			{StudentID: "4", SubjectID: "20", Value: 9.0},
			{StudentID: "5", SubjectID: "20", Value: 5.0},
			{StudentID: "3", SubjectID: "10", Value: 7.0},
		},
		Attendance: []domain.Attendance{
			{StudentID: "1", SubjectID: "10", ClassesAttended: 9, TotalClasses: 10},
			{StudentID: "2", SubjectID: "10", ClassesAttended: 8, TotalClasses: 10},
			{StudentID: "3", SubjectID: "20", ClassesAttended: 9, TotalClasses: 10},
			{StudentID: "4", SubjectID: "20", ClassesAttended: 10, TotalClasses: 10},
			{StudentID: "5", SubjectID: "20", ClassesAttended: 0, TotalClasses: 0},
			{StudentID: "3", SubjectID: "10", ClassesAttended: 7, TotalClasses: 10},
		},
	}
}

// singleStudentDataset has one student with grade 7.5 and 9 of 10 classes
func singleStudentDataset() *domain.Dataset {
	return &domain.Dataset{
		Students:   []domain.Student{{ID: "1", Name: "Ana", Class: "2025A"}},
		Subjects:   []domain.Subject{{ID: "10", Name: "Matemática"}},
		Grades:     []domain.Grade{{StudentID: "1", SubjectID: "10", Value: 7.5}},
		Attendance: []domain.Attendance{{StudentID: "1", SubjectID: "10", ClassesAttended: 9, TotalClasses: 10}},
	}
}

func ptr(v float64) *float64 {
	return &v
}
