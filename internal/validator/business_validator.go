package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SmartEdu-Labs/network-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	registerCustomRules(validate)

	return &BusinessValidator{validate: validate}
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateMentorshipRequest validates a new mentorship request against the
// requests already on the profile.
func (bv *BusinessValidator) ValidateMentorshipRequest(req *MentorshipRequestCreate, existing []models.MentorshipRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	for _, r := range existing {
		if r.MentorID == req.MentorID && r.Status != models.RequestDeclined {
			errors = append(errors, ValidationError{
				Field:   "mentor_id",
				Message: "a request to this mentor is already open",
				Value:   req.MentorID,
				Rule:    "duplicate_request",
			})
			break
		}
	}

	return errors
}

// ValidateVote validates that a vote can be cast on a post.
func (bv *BusinessValidator) ValidateVote(post *models.Post, userID string, voteType models.VoteType) ValidationErrors {
	var errors ValidationErrors

	if voteType != models.VoteUp && voteType != models.VoteDown {
		errors = append(errors, ValidationError{
			Field:   "type",
			Message: "must be UP or DOWN",
			Value:   voteType,
			Rule:    "vote_type",
		})
	}

	if post != nil {
		if _, voted := post.VoteBy(userID); voted {
			errors = append(errors, ValidationError{
				Field:   "user_id",
				Message: "user has already voted on this post",
				Value:   userID,
				Rule:    "single_vote",
			})
		}
	}

	return errors
}

// registerCustomRules registers the domain validation tags. Both the
// request validator and the business validator carry the same rule set,
// so tags like vote_type resolve on any instance.
func registerCustomRules(validate *validator.Validate) {
	// Vote type validation (UP/DOWN)
	validate.RegisterValidation("vote_type", func(fl validator.FieldLevel) bool {
		t := models.VoteType(strings.ToUpper(fl.Field().String()))
		return t == models.VoteUp || t == models.VoteDown
	})

	// XP amount validation (positive, bounded)
	validate.RegisterValidation("xp_amount", func(fl validator.FieldLevel) bool {
		amount := fl.Field().Int()
		return amount >= 1 && amount <= 10000
	})

	// Notification severity validation
	validate.RegisterValidation("notification_severity", func(fl validator.FieldLevel) bool {
		s := models.NotificationSeverity(fl.Field().String())
		switch s {
		case models.SeverityInfo, models.SeveritySuccess, models.SeverityWarning, models.SeverityError:
			return true
		}
		return false
	})

	// User role validation
	validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		r := models.UserRole(strings.ToUpper(fl.Field().String()))
		switch r {
		case models.RoleStudent, models.RoleSchool, models.RoleMentor, models.RoleAdmin:
			return true
		}
		return false
	})
}
