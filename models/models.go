package models

// Summary holds the aggregate counts produced by one classification run.
// It is always recomputed from the run's classified dataset, never stored.
type Summary struct {
	TotalStudents     int     `json:"total_students"`
	DefaulterCount    int     `json:"defaulter_count"`
	NonDefaulterCount int     `json:"non_defaulter_count"`
	Threshold         float64 `json:"threshold"`
}

// ClassInfo carries the metadata rendered onto the graph report.
type ClassInfo struct {
	TeacherName string  `json:"teacher_name"`
	ClassName   string  `json:"class_name"`
	Threshold   float64 `json:"threshold"`
}

// TeacherDetails is the signature block for the teacher summary email.
type TeacherDetails struct {
	Designation string `json:"teacher_designation"`
	ClassName   string `json:"class_name"`
	Department  string `json:"department"`
	CollegeName string `json:"college_name"`
}

// SendEmailRequest is the body of POST /send-email.
type SendEmailRequest struct {
	TeacherEmail       string  `json:"teacher_email" binding:"required,email"`
	TeacherName        string  `json:"teacher_name" binding:"required"`
	ResultsFile        string  `json:"results_file" binding:"required"`
	Results            Summary `json:"results" binding:"required"`
	TeacherDesignation string  `json:"teacher_designation" binding:"required"`
	ClassName          string  `json:"class_name" binding:"required"`
	Department         string  `json:"department" binding:"required"`
	CollegeName        string  `json:"college_name" binding:"required"`
}

// SendStudentEmailRequest is the body of POST /send-student-email. Threshold
// is optional; the configured default applies when it is absent.
type SendStudentEmailRequest struct {
	ResultsFile string   `json:"results_file" binding:"required"`
	Threshold   *float64 `json:"threshold"`
}

// GenerateGraphsRequest is the body of POST /generate-graphs.
type GenerateGraphsRequest struct {
	ResultsFile string  `json:"results_file" binding:"required"`
	TeacherName string  `json:"teacher_name" binding:"required"`
	ClassName   string  `json:"class_name" binding:"required"`
	Threshold   float64 `json:"threshold" binding:"required"`
}
