package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/unidash/unidash/core/university"
)

type (
	// ViewResponse carries a list view session snapshot back to the UI.
	ViewResponse struct {
		ID    string               `json:"id"`
		State university.ViewState `json:"state"`
	}

	TabRequest struct {
		Tab university.Tab `json:"tab"`
	}

	PageRequest struct {
		Page int `json:"page"`
	}

	LimitRequest struct {
		Limit int `json:"limit"`
	}

	SearchRequest struct {
		Search string `json:"search"`
	}

	FiltersRequest struct {
		Filters university.FilterSet `json:"filters"`
	}

	FieldSearchRequest struct {
		Key   university.FilterKey `json:"key"`
		Value string               `json:"value"`
	}

	// SelectionRequest mutates the checked rows; All applies first,
	// then Select and Deselect.
	SelectionRequest struct {
		All      *bool    `json:"all,omitempty"`
		Select   []string `json:"select,omitempty"`
		Deselect []string `json:"deselect,omitempty"`
	}

	TransitionRequest struct {
		Status university.Status `json:"status"`
	}

	ListRequest struct {
		Page   int               `query:"page"`
		Limit  int               `query:"limit"`
		Search string            `query:"search"`
		Sector string            `query:"type"`
		Status university.Status `query:"status"`
	}

	DraftResponse struct {
		ID     string                   `json:"id"`
		Step   university.DraftStep     `json:"step"`
		Record university.NewUniversity `json:"record"`
	}
)

func intParam(ctx echo.Context, name string) (int, error) {
	val, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return val, nil
}
