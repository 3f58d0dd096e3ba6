package gateapi // import "github.com/joincivil/civil-content-gate/pkg/gateapi"

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-gate/pkg/gate"
	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/model"
)

type signedParams struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

func (p signedParams) claim() gate.SignedClaim {
	return gate.SignedClaim{
		Address:   p.Address,
		Message:   p.Message,
		Signature: p.Signature,
	}
}

type cardParams struct {
	CampaignID  CampaignID `json:"campaignId"`
	Title       string     `json:"title"`
	ImageURL    string     `json:"imageUrl"`
	Description string     `json:"description"`
	signedParams
}

type postParams struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	signedParams
}

func bindParams(c echo.Context, params interface{}) error {
	err := c.Bind(params)
	if err == nil {
		return nil
	}
	var gateErr *gaterr.Error
	if errors.As(err, &gateErr) {
		return gateErr
	}
	if httpErr, ok := err.(*echo.HTTPError); ok && httpErr.Code != http.StatusBadRequest {
		return err
	}
	return gaterr.Wrap(gaterr.KindValidation, err, "Malformed request body")
}

func campaignIDParam(c echo.Context) (uint64, error) {
	return ParseCampaignID(c.Param("id"))
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

type campaigns struct {
	service *gate.ContentService
	oracle  model.CampaignOracle
}

// List returns every card
func (h *campaigns) List(c echo.Context) error {
	cards, err := h.service.Cards()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"campaigns": serializeCards(cards),
	})
}

// Save creates or replaces the card of a campaign
func (h *campaigns) Save(c echo.Context) error {
	var params cardParams
	if err := bindParams(c, &params); err != nil {
		return err
	}
	if !params.CampaignID.Set {
		return gaterr.New(gaterr.KindValidation, "Missing fields")
	}

	_, err := h.service.SaveCard(c.Request().Context(), &gate.CardRequest{
		CampaignID:  params.CampaignID.Value,
		Title:       params.Title,
		ImageURL:    params.ImageURL,
		Description: params.Description,
		Claim:       params.claim(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Show returns the stored card and the on-chain record of a campaign
func (h *campaigns) Show(c echo.Context) error {
	campaignID, err := campaignIDParam(c)
	if err != nil {
		return err
	}
	chain, err := h.oracle.Campaign(c.Request().Context(), campaignID)
	if err != nil {
		return err
	}
	card, err := h.service.Card(campaignID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"card":  serializeCard(card),
		"chain": serializeChainCampaign(chain),
	})
}

// Subscription returns the live entitlement of an address for a campaign
func (h *campaigns) Subscription(c echo.Context) error {
	campaignID, err := campaignIDParam(c)
	if err != nil {
		return err
	}
	rawAddress := c.QueryParam("address")
	if strings.TrimSpace(rawAddress) == "" {
		return gaterr.New(gaterr.KindValidation, "Missing fields")
	}
	address, err := gate.ParseAddress(rawAddress)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	active, err := h.oracle.IsEntitled(ctx, campaignID, address)
	if err != nil {
		return err
	}
	activeUntil, err := h.oracle.ActiveUntil(ctx, campaignID, address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"address":     model.LowerHex(address),
		"active":      active,
		"activeUntil": bigString(activeUntil),
	})
}

type posts struct {
	service *gate.ContentService
}

// List returns the posts of a campaign, projected for the caller's access
func (h *posts) List(c echo.Context) error {
	campaignID, err := campaignIDParam(c)
	if err != nil {
		return err
	}
	view, err := h.service.Posts(c.Request().Context(), campaignID, c.QueryParam("address"))
	if err != nil {
		return err
	}
	resp := echo.Map{
		"access": view.Decision.Access.String(),
		"posts":  serializeProjectedPosts(view.Posts),
	}
	if view.Decision.Degraded {
		resp["degraded"] = true
	}
	return c.JSON(http.StatusOK, resp)
}

// Publish appends a post to a campaign
func (h *posts) Publish(c echo.Context) error {
	campaignID, err := campaignIDParam(c)
	if err != nil {
		return err
	}
	var params postParams
	if err = bindParams(c, &params); err != nil {
		return err
	}

	post, err := h.service.PublishPost(c.Request().Context(), &gate.PostRequest{
		CampaignID: campaignID,
		Title:      params.Title,
		Body:       params.Body,
		Claim:      params.claim(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ok":   true,
		"post": serializePost(post),
	})
}
