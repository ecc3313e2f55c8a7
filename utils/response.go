package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the uniform envelope every endpoint returns.
type JSONResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Success writes a 200 envelope with data.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, JSONResponse{Success: true, Data: data})
}

// SuccessMessage writes a 200 envelope with a message and optional data.
func SuccessMessage(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, JSONResponse{Success: true, Message: message, Data: data})
}

// Created writes a 201 envelope with a message and data.
func Created(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, JSONResponse{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope with the given status.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, JSONResponse{Success: false, Message: message})
}

// ValidationFailed writes a 400 envelope carrying field-level messages.
func ValidationFailed(ctx *gin.Context, errs ...string) {
	msg := "validation failed"
	if len(errs) == 1 {
		msg = errs[0]
	}
	ctx.JSON(http.StatusBadRequest, JSONResponse{Success: false, Message: msg, Errors: errs})
}
