package httpapi

import (
	"sync"

	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type passwordResetRequestRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type passwordResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type userUpdateRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
}

type projectCreateRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type projectUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type stepCreateRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type stepUpdateRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
}

type taskCreateRequest struct {
	Title       string  `json:"title" binding:"required,min=2,max=100"`
	Description string  `json:"description" binding:"max=500"`
	AssignedTo  *string `json:"assignedTo" binding:"omitempty,uuid"`
	StepID      string  `json:"stepId" binding:"required,uuid"`
}

type taskUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	AssignedTo  *string `json:"assignedTo" binding:"omitempty,uuid"`
}

type pageQuery struct {
	Page int `form:"page" binding:"min=0"`
	Size int `form:"size" binding:"omitempty,min=1,max=100"`
}

func (q pageQuery) page() models.Page {
	return models.Page{Number: q.Page, Size: q.Size}
}

type userListQuery struct {
	pageQuery
	Name          string `form:"name"`
	Email         string `form:"email"`
	Role          string `form:"role" binding:"omitempty,oneof=ADMIN USER"`
	EmailVerified *bool  `form:"emailVerified"`
}

type projectListQuery struct {
	pageQuery
	Name        string `form:"name"`
	Description string `form:"description"`
	UserID      string `form:"userId" binding:"omitempty,uuid"`
}

type stepListQuery struct {
	pageQuery
	Name string `form:"name"`
}

type taskListQuery struct {
	pageQuery
	Title       string `form:"title"`
	Description string `form:"description"`
	AssignedTo  string `form:"assignedTo" binding:"omitempty,uuid"`
	StepID      string `form:"stepId" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,taskstatus"`
}

var registerOnce sync.Once

// registerValidators adds the custom binding tags to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
				return models.TaskStatus(fl.Field().String()).Valid()
			})
		}
	})
}
