package identity

import (
	"context"
	"strings"

	"github.com/Ramsey-B/clover/pkg/extractor"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// HouseholdGraph indexes guardian-student relationships in both directions.
type HouseholdGraph struct {
	relationships []models.Relationship
	byGuardian    map[string][]int
	byStudent     map[string][]int
}

// NewHouseholdGraph creates an empty household graph
func NewHouseholdGraph() *HouseholdGraph {
	return &HouseholdGraph{
		byGuardian: make(map[string][]int),
		byStudent:  make(map[string][]int),
	}
}

// AddRelationship records one guardian->student edge.
func (h *HouseholdGraph) AddRelationship(rel models.Relationship) {
	idx := len(h.relationships)
	h.relationships = append(h.relationships, rel)
	h.byGuardian[rel.GuardianID] = append(h.byGuardian[rel.GuardianID], idx)
	h.byStudent[rel.StudentID] = append(h.byStudent[rel.StudentID], idx)
}

// GuardiansForStudent returns every relationship naming the student.
func (h *HouseholdGraph) GuardiansForStudent(studentID string) []models.Relationship {
	return h.collect(h.byStudent[studentID])
}

// StudentsForGuardian returns every relationship naming the guardian.
func (h *HouseholdGraph) StudentsForGuardian(guardianID string) []models.Relationship {
	return h.collect(h.byGuardian[guardianID])
}

// Relationships returns all edges in insertion order.
func (h *HouseholdGraph) Relationships() []models.Relationship {
	return h.relationships
}

func (h *HouseholdGraph) collect(indexes []int) []models.Relationship {
	out := make([]models.Relationship, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, h.relationships[i])
	}
	return out
}

// BuildHouseholdGraph adds guardian records to the resolver's household
// graph. The student_ids field may be a comma-delimited list; blank ids are
// skipped silently. Boolean flags parse leniently (yes/true/1/y).
func (r *Resolver) BuildHouseholdGraph(ctx context.Context, guardians []map[string]any) *HouseholdGraph {
	ctx, span := tracing.StartSpan(ctx, "identity.Resolver.BuildHouseholdGraph")
	defer span.End()

	ext := extractor.New(extractor.GuardianAliases)

	for _, guardian := range guardians {
		guardianID := ext.String(guardian, "guardian_id")
		studentIDs := strings.Split(ext.String(guardian, "student_ids"), ",")

		rel := models.Relationship{
			GuardianID:        guardianID,
			RelationshipType:  ext.StringOr(guardian, "relationship", "Guardian"),
			CustodyType:       ext.StringOr(guardian, "custody_type", "Full"),
			EmergencyPriority: ext.IntOr(guardian, "emergency_priority", 0),
			ReceivesMail:      ext.Bool(guardian, "receives_mail"),
			CanPickup:         ext.Bool(guardian, "can_pickup"),
			GradeVisibility:   ext.Bool(guardian, "grade_visibility"),
		}

		for _, studentID := range studentIDs {
			studentID = strings.TrimSpace(studentID)
			if studentID == "" {
				continue
			}
			edge := rel
			edge.StudentID = studentID
			r.household.AddRelationship(edge)
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"guardian_count":     len(guardians),
		"relationship_count": len(r.household.Relationships()),
	}).Debug("household graph built")

	return r.household
}
