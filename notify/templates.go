package notify

import "html/template"

var teacherSummaryTmpl = template.Must(template.New("teacher_summary").Parse(`<html>
    <body>
        <h2 style="color: #2C3E50;">Dear {{.TeacherName}},</h2>
        <p style="font-size: 16px;">
            Your student defaulter analysis report is ready. Here are the summary results:
        </p>
        <div style="font-size: 16px; margin: 20px 0;">
            <p><strong>Total Students:</strong> {{.Summary.TotalStudents}}</p>
            <p><strong>Defaulters:</strong> {{.Summary.DefaulterCount}}</p>
            <p><strong>Non-Defaulters:</strong> {{.Summary.NonDefaulterCount}}</p>
            <p><strong>Threshold:</strong> {{.Summary.Threshold}}%</p>
        </div>
        <p style="font-size: 16px;">
            Please find the detailed report attached with this email.
        </p>
        <p style="font-size: 16px;">
            Regards,<br>
            {{.TeacherName}},<br>
            {{.Details.Designation}}<br>
            {{.Details.ClassName}},<br>
            {{.Details.Department}}<br>
            {{.Details.CollegeName}}
        </p>
    </body>
</html>`))

// The warning threshold is taken from the request so the notice always
// matches the cutoff the class was actually classified against.
var studentWarningTmpl = template.Must(template.New("student_warning").Parse(`<html>
    <body>
        <h2 style="color: #2C3E50;">Dear Student,</h2>
        <p style="font-size: 16px;">
            We hope this message finds you well.
        </p>
        <p style="font-size: 16px;">
            This is to inform you that your attendance is currently below the threshold of <strong>{{.Threshold}}%</strong>.
            Regular attendance is crucial for your academic success and engagement in the learning process.
        </p>
        <p style="font-size: 16px;">
            Please take the necessary steps to improve your attendance. If you are facing any issues, do not hesitate to reach out for support.
        </p>
        <p style="font-size: 16px;">
            Thank you for your attention to this matter.
        </p>
        <p style="font-size: 16px;">
            Regards,<br>
            {{.FromName}},<br>
            Class Teacher
        </p>
    </body>
</html>`))
