// Package reconcile verifies migrated data against its source through a
// declarative registry of checks
package reconcile

import "github.com/Ramsey-B/clover/pkg/models"

// CheckSpec is the typed payload telling the engine how to run a check.
// Each category has one spec variant and one runner; the registry stays
// declarative data.
type CheckSpec interface {
	category() models.CheckCategory
}

// CountSpec compares source and target record counts for one entity type.
type CountSpec struct {
	EntityType string `validate:"required"`
}

func (CountSpec) category() models.CheckCategory { return models.CheckCategoryCount }

// ReferentialSpec verifies every child record's foreign key resolves to a
// parent record.
type ReferentialSpec struct {
	ChildType  string `validate:"required"`
	ParentType string `validate:"required"`
	ForeignKey string `validate:"required"`
}

func (ReferentialSpec) category() models.CheckCategory { return models.CheckCategoryReferential }

// CompletenessSpec verifies a required field is populated across an entity
// type. NULL and N/A count as empty.
type CompletenessSpec struct {
	EntityType    string `validate:"required"`
	RequiredField string `validate:"required"`
}

func (CompletenessSpec) category() models.CheckCategory { return models.CheckCategoryCompleteness }

// SamplingSpec spot-checks a random sample of source records against their
// target counterparts.
type SamplingSpec struct {
	EntityType string `validate:"required"`
	SampleSize int    `validate:"gt=0"`
}

func (SamplingSpec) category() models.CheckCategory { return models.CheckCategorySampling }

// HashSpec compares order-independent collection hashes of source and
// target.
type HashSpec struct {
	EntityType string `validate:"required"`
}

func (HashSpec) category() models.CheckCategory { return models.CheckCategoryIntegrity }

// Check is one declarative reconciliation rule.
type Check struct {
	ID          string    `validate:"required"`
	Name        string    `validate:"required"`
	Description string
	Threshold   float64   `validate:"gte=0,lte=1"` // pass fraction, 1.0 = exact match required
	Blocking    bool      // a blocking failure fails the whole run
	Spec        CheckSpec `validate:"required"`
}

// Category returns the check's category, derived from its spec.
func (c Check) Category() models.CheckCategory {
	return c.Spec.category()
}

// DefaultChecks returns the standard check registry. Sample sizes come from
// configuration; count checks on deduplicated collections allow 1% variance.
func DefaultChecks(studentSampleSize, gradeSampleSize int) []Check {
	return []Check{
		// Count checks
		{
			ID:          "count_students",
			Name:        "Student Count Match",
			Description: "Verify source and target student counts match",
			Threshold:   1.0,
			Blocking:    true,
			Spec:        CountSpec{EntityType: "students"},
		},
		{
			ID:          "count_guardians",
			Name:        "Guardian Count Match",
			Description: "Verify source and target guardian counts match",
			Threshold:   1.0,
			Spec:        CountSpec{EntityType: "guardians"},
		},
		{
			ID:          "count_enrollments",
			Name:        "Enrollment Count Match",
			Description: "Verify enrollment record counts match",
			Threshold:   1.0,
			Spec:        CountSpec{EntityType: "enrollments"},
		},
		{
			ID:          "count_grades",
			Name:        "Grade Record Count Match",
			Description: "Verify grade record counts match",
			Threshold:   0.99, // allow 1% variance for deduplication
			Spec:        CountSpec{EntityType: "grades"},
		},
		{
			ID:          "count_attendance",
			Name:        "Attendance Record Count Match",
			Description: "Verify attendance record counts match",
			Threshold:   0.99,
			Spec:        CountSpec{EntityType: "attendance"},
		},

		// Referential integrity checks
		{
			ID:          "ref_enrollment_student",
			Name:        "Enrollment-Student Reference",
			Description: "All enrollments reference valid students",
			Threshold:   1.0,
			Blocking:    true,
			Spec:        ReferentialSpec{ChildType: "enrollments", ParentType: "students", ForeignKey: "student_id"},
		},
		{
			ID:          "ref_grade_student",
			Name:        "Grade-Student Reference",
			Description: "All grades reference valid students",
			Threshold:   1.0,
			Blocking:    true,
			Spec:        ReferentialSpec{ChildType: "grades", ParentType: "students", ForeignKey: "student_id"},
		},
		{
			ID:          "ref_attendance_student",
			Name:        "Attendance-Student Reference",
			Description: "All attendance records reference valid students",
			Threshold:   1.0,
			Blocking:    true,
			Spec:        ReferentialSpec{ChildType: "attendance", ParentType: "students", ForeignKey: "student_id"},
		},
		{
			ID:          "ref_guardian_student",
			Name:        "Guardian-Student Relationship",
			Description: "All guardian relationships reference valid students",
			Threshold:   1.0,
			Spec:        ReferentialSpec{ChildType: "relationships", ParentType: "students", ForeignKey: "student_id"},
		},

		// Completeness checks
		{
			ID:          "complete_student_guardian",
			Name:        "Student Guardian Coverage",
			Description: "99.5%+ students have at least one guardian",
			Threshold:   0.995,
			Spec:        CompletenessSpec{EntityType: "students", RequiredField: "guardian_id"},
		},
		{
			ID:          "complete_student_contact",
			Name:        "Student Contact Info",
			Description: "99%+ students have contact information",
			Threshold:   0.99,
			Spec:        CompletenessSpec{EntityType: "students", RequiredField: "email"},
		},
		{
			ID:          "complete_student_enrollment",
			Name:        "Student Enrollment",
			Description: "All students have at least one enrollment",
			Threshold:   1.0,
			Spec:        CompletenessSpec{EntityType: "students", RequiredField: "enrollment_id"},
		},

		// Sampling checks
		{
			ID:          "sample_student_data",
			Name:        "Student Data Sampling",
			Description: "Random sample verification of student records",
			Threshold:   0.99,
			Spec:        SamplingSpec{EntityType: "students", SampleSize: studentSampleSize},
		},
		{
			ID:          "sample_grade_data",
			Name:        "Grade Data Sampling",
			Description: "Random sample verification of grade records",
			Threshold:   0.99,
			Spec:        SamplingSpec{EntityType: "grades", SampleSize: gradeSampleSize},
		},

		// Data integrity checks
		{
			ID:          "integrity_hash",
			Name:        "Data Hash Verification",
			Description: "Verify data integrity via hash comparison",
			Threshold:   1.0,
			Blocking:    true,
			Spec:        HashSpec{EntityType: "students"},
		},
	}
}
