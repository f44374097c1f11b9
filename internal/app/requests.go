package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/garyellow/programme-matcher/internal/catalog"
	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/matcher"
	"github.com/garyellow/programme-matcher/internal/traitcode"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// codesRequest carries aggregated quiz scores for both axes.
type codesRequest struct {
	RIASEC     []traitcode.ScoredComponent `json:"riasec" validate:"max=16,dive"`
	WorkValues []traitcode.ScoredComponent `json:"workValues" validate:"max=16,dive"`
}

type codesResponse struct {
	RIASECCode    string `json:"riasecCode"`
	WorkValueCode string `json:"workValueCode"`
}

type majorsRequest struct {
	RIASECCode    string `json:"riasecCode" validate:"max=8"`
	WorkValueCode string `json:"workValueCode" validate:"max=8"`
}

type modulesRequest struct {
	Recommendations matcher.MajorRecommendations `json:"recommendations"`
	MajorCap        int                          `json:"majorCap" validate:"omitempty,min=1,max=20"`
	ModulesPerMajor int                          `json:"modulesPerMajor" validate:"omitempty,min=1,max=20"`
}

type recommendationsRequest struct {
	codesRequest
	MajorCap        int `json:"majorCap" validate:"omitempty,min=1,max=20"`
	ModulesPerMajor int `json:"modulesPerMajor" validate:"omitempty,min=1,max=20"`
}

type rateRequest struct {
	ModuleCode  string `json:"moduleCode" validate:"required,max=32"`
	Institution string `json:"institution" validate:"omitempty,oneof=NUS NTU SMU"`
	Rating      int    `json:"rating" validate:"required,min=1,max=10"`
}

type selectionInput struct {
	ModuleCode  string `json:"moduleCode" validate:"required,max=32"`
	Institution string `json:"institution" validate:"omitempty,oneof=NUS NTU SMU"`
	Title       string `json:"title" validate:"max=256"`
	Reason      string `json:"reason" validate:"max=512"`
}

type selectionsRequest struct {
	Selections []selectionInput `json:"selections" validate:"max=50,dive"`
}

type finalSelectionsRequest struct {
	Modules []catalog.Module `json:"modules" validate:"required,min=1,max=200"`
}

type assistantRequest struct {
	Prompt      string  `json:"prompt" validate:"required"`
	MaxTokens   int64   `json:"maxTokens" validate:"omitempty,min=1,max=4096"`
	Temperature float64 `json:"temperature" validate:"omitempty,gt=0,lte=2"`
	TopP        float64 `json:"topP" validate:"omitempty,gt=0,lte=1"`
}

type searchQuery struct {
	Query       string `form:"q" validate:"max=200"`
	Institution string `form:"institution" validate:"omitempty,oneof=NUS NTU SMU"`
	Limit       int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// bindJSON decodes the body into dst and validates it.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return validateStruct(dst)
}

// bindQuery decodes query parameters into dst and validates it.
func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apperrors.NewValidationError("query", err.Error())
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("body", err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
		}
	}
	return apperrors.NewValidationError(fieldErrs[0].Field(), strings.Join(msgs, "; "))
}
