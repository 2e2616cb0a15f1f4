package model

// ContactRequest はお問い合わせフォームのリクエストボディ
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// JobApplicationRequest は求人応募のリクエストボディ
type JobApplicationRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=40"`
	Position  string `json:"position" validate:"required,max=100"`
	ResumeURL string `json:"resumeUrl" validate:"omitempty,url"`
	Message   string `json:"message" validate:"required,max=5000"`
}
