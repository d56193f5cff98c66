package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sms-backend/auth"
	"sms-backend/jsonapi"
	"sms-backend/models"
	"sms-backend/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// ActionAttachmentController serves the generic configuration action
// attachment resource.
type ActionAttachmentController struct {
	service services.ActionAttachmentService
}

// NewActionAttachmentController creates a new controller instance.
func NewActionAttachmentController(service services.ActionAttachmentService) *ActionAttachmentController {
	return &ActionAttachmentController{service: service}
}

// --- go-restful Route Definitions ---

// RegisterRoutes sets up the resource routes on a go-restful WebService.
// Reads are open to anonymous callers (visibility-filtered); mutations
// require a valid bearer token.
func (ctl *ActionAttachmentController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/generic-configuration-action-attachments").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.GET("").Filter(auth.OptionalAuthFilter()).To(ctl.listHandler).
		Doc("List generic configuration action attachments").
		Param(ws.QueryParameter("include", "Comma separated related resources to embed (action, attachment)").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"generic-configuration-action-attachments"}).
		Writes(jsonapi.CollectionDocument{}).
		Returns(http.StatusOK, "Attachments listed successfully", jsonapi.CollectionDocument{}))

	ws.Route(ws.GET("/{attachment-id}").Filter(auth.OptionalAuthFilter()).To(ctl.getHandler).
		Doc("Get a generic configuration action attachment by ID").
		Param(ws.PathParameter("attachment-id", "Identifier of the action attachment").DataType("integer")).
		Param(ws.QueryParameter("include", "Comma separated related resources to embed (action, attachment)").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"generic-configuration-action-attachments"}).
		Writes(jsonapi.Document{}).
		Returns(http.StatusOK, "Attachment found", jsonapi.Document{}).
		Returns(http.StatusNotFound, "Attachment not found", jsonapi.ErrorDocument{}))

	ws.Route(ws.POST("").Filter(auth.AuthFilter()).To(ctl.createHandler).
		Doc("Create a generic configuration action attachment").
		Metadata(restfulspec.KeyOpenAPITags, []string{"generic-configuration-action-attachments"}).
		Reads(jsonapi.Document{}).
		Returns(http.StatusCreated, "Attachment created successfully", jsonapi.Document{}).
		Returns(http.StatusBadRequest, "Invalid request body", jsonapi.ErrorDocument{}).
		Returns(http.StatusUnauthorized, "Unauthorized", nil).
		Returns(http.StatusUnprocessableEntity, "Relationship validation failed", jsonapi.ErrorDocument{}))

	ws.Route(ws.PATCH("/{attachment-id}").Filter(auth.AuthFilter()).To(ctl.updateHandler).
		Doc("Update a generic configuration action attachment").
		Param(ws.PathParameter("attachment-id", "Identifier of the action attachment to update").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"generic-configuration-action-attachments"}).
		Reads(jsonapi.Document{}).
		Returns(http.StatusOK, "Attachment updated successfully", jsonapi.Document{}).
		Returns(http.StatusBadRequest, "Invalid request body or ID", jsonapi.ErrorDocument{}).
		Returns(http.StatusUnauthorized, "Unauthorized", nil).
		Returns(http.StatusNotFound, "Attachment not found", jsonapi.ErrorDocument{}).
		Returns(http.StatusUnprocessableEntity, "Relationship validation failed", jsonapi.ErrorDocument{}))

	ws.Route(ws.DELETE("/{attachment-id}").Filter(auth.AuthFilter()).To(ctl.deleteHandler).
		Doc("Delete a generic configuration action attachment").
		Param(ws.PathParameter("attachment-id", "Identifier of the action attachment to delete").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"generic-configuration-action-attachments"}).
		Returns(http.StatusOK, "Attachment deleted successfully", nil).
		Returns(http.StatusUnauthorized, "Unauthorized", nil).
		Returns(http.StatusNotFound, "Attachment not found", jsonapi.ErrorDocument{}))
}

// --- go-restful Handler Functions ---

func (ctl *ActionAttachmentController) listHandler(request *restful.Request, response *restful.Response) {
	authenticated := auth.IsAuthenticated(request)

	items, total, err := ctl.service.List(authenticated)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	include := parseInclude(request)
	doc := jsonapi.CollectionDocument{
		Data: make([]jsonapi.Resource, 0, len(items)),
		Meta: jsonapi.Meta{Count: int(total)},
	}
	for i := range items {
		doc.Data = append(doc.Data, mapActionAttachment(&items[i]))
	}
	doc.Included = buildIncluded(items, include)

	_ = response.WriteHeaderAndJson(http.StatusOK, doc, restful.MIME_JSON)
}

func (ctl *ActionAttachmentController) getHandler(request *restful.Request, response *restful.Response) {
	id, ok := parsePathID(request, response)
	if !ok {
		return
	}
	authenticated := auth.IsAuthenticated(request)

	aa, err := ctl.service.Get(id, authenticated)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	ctl.writeDocument(response, http.StatusOK, aa, parseInclude(request))
}

func (ctl *ActionAttachmentController) createHandler(request *restful.Request, response *restful.Response) {
	body, ok := readDocument(request, response)
	if !ok {
		return
	}

	input := &services.CreateActionAttachmentInput{
		Action:     relationshipRef(body.Data, "action"),
		Attachment: relationshipRef(body.Data, "attachment"),
	}

	aa, err := ctl.service.Create(input)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	ctl.writeDocument(response, http.StatusCreated, aa, parseInclude(request))
}

func (ctl *ActionAttachmentController) updateHandler(request *restful.Request, response *restful.Response) {
	id, ok := parsePathID(request, response)
	if !ok {
		return
	}
	body, ok := readDocument(request, response)
	if !ok {
		return
	}

	input := &services.UpdateActionAttachmentInput{
		Action:     relationshipRef(body.Data, "action"),
		Attachment: relationshipRef(body.Data, "attachment"),
	}

	aa, err := ctl.service.Update(id, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	ctl.writeDocument(response, http.StatusOK, aa, parseInclude(request))
}

func (ctl *ActionAttachmentController) deleteHandler(request *restful.Request, response *restful.Response) {
	id, ok := parsePathID(request, response)
	if !ok {
		return
	}

	if err := ctl.service.Delete(id); err != nil {
		handleServiceError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// --- Utility Functions ---

func (ctl *ActionAttachmentController) writeDocument(response *restful.Response, status int, aa *models.GenericConfigurationActionAttachment, include map[string]bool) {
	resource := mapActionAttachment(aa)
	doc := jsonapi.Document{
		Data:     &resource,
		Included: buildIncluded([]models.GenericConfigurationActionAttachment{*aa}, include),
	}
	_ = response.WriteHeaderAndJson(status, doc, restful.MIME_JSON)
}

// readDocument reads the request body and checks the top-level resource type.
func readDocument(request *restful.Request, response *restful.Response) (*jsonapi.Document, bool) {
	body := new(jsonapi.Document)
	if err := request.ReadEntity(body); err != nil {
		writeError(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if body.Data == nil {
		writeError(response, http.StatusBadRequest, "Request body must contain a data object")
		return nil, false
	}
	if body.Data.Type != models.TypeActionAttachment {
		writeError(response, http.StatusUnprocessableEntity, "Invalid resource type "+strconv.Quote(body.Data.Type))
		return nil, false
	}
	return body, true
}

func parsePathID(request *restful.Request, response *restful.Response) (uint, bool) {
	idStr := request.PathParameter("attachment-id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeError(response, http.StatusBadRequest, "Invalid action attachment ID format")
		return 0, false
	}
	return uint(id), true
}

func relationshipRef(res *jsonapi.Resource, slot string) *services.RelationshipRef {
	rel, ok := res.Relationships[slot]
	if !ok || rel.Data == nil {
		return nil
	}
	return &services.RelationshipRef{Type: rel.Data.Type, ID: string(rel.Data.ID)}
}

func parseInclude(request *restful.Request) map[string]bool {
	include := map[string]bool{}
	raw := request.QueryParameter("include")
	if raw == "" {
		return include
	}
	for _, part := range strings.Split(raw, ",") {
		include[strings.TrimSpace(part)] = true
	}
	return include
}

// --- Model to resource mapping ---

func formatID(id uint) jsonapi.ID {
	return jsonapi.ID(strconv.FormatUint(uint64(id), 10))
}

func mapActionAttachment(aa *models.GenericConfigurationActionAttachment) jsonapi.Resource {
	return jsonapi.Resource{
		Type:       models.TypeActionAttachment,
		ID:         formatID(aa.ID),
		Attributes: map[string]any{},
		Relationships: map[string]jsonapi.Relationship{
			"action":     {Data: &jsonapi.ResourceIdentifier{Type: models.TypeAction, ID: formatID(aa.ActionID)}},
			"attachment": {Data: &jsonapi.ResourceIdentifier{Type: models.TypeAttachment, ID: formatID(aa.AttachmentID)}},
		},
	}
}

func mapAction(action *models.GenericConfigurationAction) jsonapi.Resource {
	return jsonapi.Resource{
		Type: models.TypeAction,
		ID:   formatID(action.ID),
		Attributes: map[string]any{
			"action_type_name": action.ActionTypeName,
			"description":      action.Description,
			"begin_date":       action.BeginDate,
			"end_date":         action.EndDate,
		},
	}
}

func mapAttachment(attachment *models.ConfigurationAttachment) jsonapi.Resource {
	return jsonapi.Resource{
		Type: models.TypeAttachment,
		ID:   formatID(attachment.ID),
		Attributes: map[string]any{
			"label": attachment.Label,
			"url":   attachment.URL,
		},
	}
}

// buildIncluded collects the requested related resources, each at most once.
func buildIncluded(items []models.GenericConfigurationActionAttachment, include map[string]bool) []jsonapi.Resource {
	if len(include) == 0 {
		return nil
	}
	var included []jsonapi.Resource
	seen := map[string]bool{}
	for i := range items {
		aa := &items[i]
		if include["action"] && aa.Action.ID != 0 {
			key := models.TypeAction + "/" + string(formatID(aa.Action.ID))
			if !seen[key] {
				seen[key] = true
				included = append(included, mapAction(&aa.Action))
			}
		}
		if include["attachment"] && aa.Attachment.ID != 0 {
			key := models.TypeAttachment + "/" + string(formatID(aa.Attachment.ID))
			if !seen[key] {
				seen[key] = true
				included = append(included, mapAttachment(&aa.Attachment))
			}
		}
	}
	return included
}

// handleServiceError translates service errors to HTTP responses.
func handleServiceError(response *restful.Response, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(response, http.StatusNotFound, "Object does not exist")
	case errors.As(err, &validationErr):
		writeError(response, http.StatusUnprocessableEntity, validationErr.Detail)
	default:
		writeError(response, http.StatusInternalServerError, "An internal error occurred")
	}
}

func writeError(response *restful.Response, statusCode int, detail string) {
	_ = response.WriteHeaderAndJson(statusCode, jsonapi.NewErrorDocument(statusCode, detail), restful.MIME_JSON)
}
