package policy

import (
	"github.com/noah-isme/internship-portal/internal/models"
)

// Action names an operation a view may offer.
type Action string

const (
	InternshipCreate       Action = "internship:create"
	InternshipEdit         Action = "internship:edit"
	InternshipUpdateStatus Action = "internship:update-status"
	InternshipDelete       Action = "internship:delete"
	InternshipView         Action = "internship:view"
	InternshipListAll      Action = "internship:list-all"
	InternshipExport       Action = "internship:export"

	StudentCreate Action = "student:create"
	StudentEdit   Action = "student:edit"
	StudentDelete Action = "student:delete"
	StudentView   Action = "student:view"

	TeacherCreate Action = "teacher:create"
	TeacherEdit   Action = "teacher:edit"
	TeacherDelete Action = "teacher:delete"
	TeacherView   Action = "teacher:view"

	ReportView     Action = "report:view"
	ReportGrade    Action = "report:grade"
	ReportDownload Action = "report:download"
	ReportSubmit   Action = "report:submit"
)

// Subject is the authenticated caller as seen by the policy.
type Subject struct {
	Role      models.UserRole
	UserID    int64
	StudentID int64
	TeacherID int64
	SectorIDs []int64
}

// Resource describes the record an action targets. The zero value stands for
// collection-level actions such as "create".
type Resource struct {
	OwnerStudentID int64
	SupervisorID   int64
	SectorID       int64
	Status         models.InternshipStatus
}

// Rule decides one (role, action) cell of the capability table.
type Rule func(Subject, Resource) bool

var (
	always Rule = func(Subject, Resource) bool { return true }
	never  Rule = func(Subject, Resource) bool { return false }
)

func ownsResource(s Subject, r Resource) bool {
	return s.StudentID != 0 && r.OwnerStudentID == s.StudentID
}

func ownsEditable(s Subject, r Resource) bool {
	return ownsResource(s, r) && StudentEditable(r.Status)
}

func withinTeacherScope(s Subject, r Resource) bool {
	if s.TeacherID != 0 && r.SupervisorID == s.TeacherID {
		return true
	}
	if r.SectorID == 0 {
		return false
	}
	for _, id := range s.SectorIDs {
		if id == r.SectorID {
			return true
		}
	}
	return false
}

// capabilities is the role × action table. Missing cells deny.
var capabilities = map[Action]map[models.UserRole]Rule{
	InternshipCreate: {
		models.RoleAdmin:   always,
		models.RoleTeacher: never,
		models.RoleStudent: always,
	},
	InternshipEdit: {
		models.RoleAdmin:   always,
		models.RoleTeacher: never,
		models.RoleStudent: ownsEditable,
	},
	InternshipUpdateStatus: {
		models.RoleAdmin:   never,
		models.RoleTeacher: withinTeacherScope,
		models.RoleStudent: never,
	},
	InternshipDelete: {
		models.RoleAdmin:   always,
		models.RoleTeacher: never,
		models.RoleStudent: ownsEditable,
	},
	InternshipView: {
		models.RoleAdmin:   always,
		models.RoleTeacher: withinTeacherScope,
		models.RoleStudent: always,
	},
	InternshipListAll: {
		models.RoleAdmin:   always,
		models.RoleTeacher: never,
		models.RoleStudent: always,
	},
	InternshipExport: {
		models.RoleAdmin: always,
	},

	StudentCreate: {models.RoleAdmin: always},
	StudentEdit:   {models.RoleAdmin: always},
	StudentDelete: {models.RoleAdmin: always},
	StudentView: {
		models.RoleAdmin:   always,
		models.RoleTeacher: always,
	},

	TeacherCreate: {models.RoleAdmin: always},
	TeacherEdit:   {models.RoleAdmin: always},
	TeacherDelete: {models.RoleAdmin: always},
	TeacherView:   {models.RoleAdmin: always},

	ReportView: {
		models.RoleAdmin:   always,
		models.RoleTeacher: withinTeacherScope,
		models.RoleStudent: ownsResource,
	},
	ReportGrade: {
		models.RoleAdmin:   never,
		models.RoleTeacher: withinTeacherScope,
		models.RoleStudent: never,
	},
	ReportDownload: {
		models.RoleAdmin:   always,
		models.RoleTeacher: always,
		models.RoleStudent: ownsResource,
	},
	ReportSubmit: {
		models.RoleStudent: ownsResource,
	},
}

// Can reports whether the subject may perform action on resource.
func Can(s Subject, action Action, r Resource) bool {
	byRole, ok := capabilities[action]
	if !ok {
		return false
	}
	rule, ok := byRole[s.Role]
	if !ok {
		return false
	}
	return rule(s, r)
}

// ForInternship builds the resource view of an internship.
func ForInternship(i models.Internship) Resource {
	r := Resource{
		OwnerStudentID: i.StudentID(),
		SectorID:       i.SectorID(),
		Status:         i.Status,
	}
	if i.Teacher != nil {
		r.SupervisorID = i.Teacher.ID
	}
	return r
}

// ForReport builds the resource view of a report through its internship.
func ForReport(rep models.Report) Resource {
	if rep.Internship == nil {
		return Resource{}
	}
	return ForInternship(*rep.Internship)
}

// Actions lists every action present in the capability table.
func Actions() []Action {
	out := make([]Action, 0, len(capabilities))
	for action := range capabilities {
		out = append(out, action)
	}
	return out
}
