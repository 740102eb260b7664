package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/assetbucket/internal/modules/serializer"
	"github.com/memodb-io/assetbucket/internal/modules/service"
)

type AssetHandler struct {
	svc service.AssetService
}

func NewAssetHandler(s service.AssetService) *AssetHandler {
	return &AssetHandler{svc: s}
}

type UploadReq struct {
	Folder string `form:"folder" json:"folder" example:"products/2024"`
}

// Upload godoc
//
//	@Summary		Upload asset
//	@Description	Upload a file. Images get small, medium, high, original and placeholder variants; audio, video and pdf files are stored as is. The optional folder is normalized and nested below the category directory.
//	@Tags			asset
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Param			folder	formData	string	false	"Folder below the category directory"	example(products/2024)
//	@Security		SecretToken
//	@Success		200	{object}	serializer.AssetResponse
//	@Failure		400	{object}	serializer.Response
//	@Failure		401	{object}	serializer.Response
//	@Router			/upload [post]
func (h *AssetHandler) Upload(c *gin.Context) {
	req := UploadReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("file is required")))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("cannot read file", err))
		return
	}
	defer f.Close()

	asset, err := h.svc.Upload(c.Request.Context(), service.UploadInput{
		Content:      f,
		OriginalName: fileHeader.Filename,
		Folder:       req.Folder,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.NewAssetResponse(asset, h.svc.OriginalPath(asset)))
}

// GetAsset godoc
//
//	@Summary		Get asset
//	@Description	Get the metadata record of an asset by its base name
//	@Tags			asset
//	@Produce		json
//	@Param			base_name	path	string	true	"Base name without extension"
//	@Success		200	{object}	serializer.AssetResponse
//	@Failure		404	{object}	serializer.Response
//	@Router			/asset/{base_name} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.svc.GetByName(c.Request.Context(), c.Param("base_name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.NewAssetResponse(asset, h.svc.OriginalPath(asset)))
}

// ServeFile godoc
//
//	@Summary		Serve file
//	@Description	Stream a stored file. /files/images/{variant}/{path} resolves an image variant through its record; any other path is looked up as stored.
//	@Tags			asset
//	@Produce		octet-stream
//	@Param			filepath	path	string	true	"Path below the serving prefix"
//	@Success		200	{file}	binary
//	@Failure		404	{object}	serializer.Response
//	@Router			/files/{filepath} [get]
func (h *AssetHandler) ServeFile(c *gin.Context) {
	file, err := h.svc.OpenFile(c.Request.Context(), c.Param("filepath"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Body.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file.Body, nil)
}

// DeleteByName godoc
//
//	@Summary		Delete asset by name
//	@Description	Delete every stored file of an asset, then its record
//	@Tags			asset
//	@Produce		json
//	@Param			base_name	path	string	true	"Base name without extension"
//	@Security		SecretToken
//	@Success		200	{object}	serializer.DeletedResponse
//	@Failure		401	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Failure		500	{object}	serializer.Response
//	@Router			/delete/name/{base_name} [delete]
func (h *AssetHandler) DeleteByName(c *gin.Context) {
	name := c.Param("base_name")
	if _, err := h.svc.Delete(c.Request.Context(), service.ByName(name)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.DeletedResponse{Status: "deleted", Name: name})
}

// DeleteByUID godoc
//
//	@Summary		Delete asset by uid
//	@Description	Delete every stored file of an asset, then its record
//	@Tags			asset
//	@Produce		json
//	@Param			uid	path	string	true	"Asset uid"	format(uuid)
//	@Security		SecretToken
//	@Success		200	{object}	serializer.DeletedResponse
//	@Failure		401	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Failure		500	{object}	serializer.Response
//	@Router			/delete/uid/{uid} [delete]
func (h *AssetHandler) DeleteByUID(c *gin.Context) {
	uid := c.Param("uid")
	if _, err := h.svc.Delete(c.Request.Context(), service.ByUID(uid)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.DeletedResponse{Status: "deleted", UID: uid})
}

// Health godoc
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	serializer.StatusResponse
//	@Router		/health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.StatusResponse{Status: "ok"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("asset not found"))
	case errors.Is(err, service.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unsupported file type", err))
	case errors.Is(err, service.ErrScanFailure):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file failed security scan", err))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
	case errors.Is(err, service.ErrPartialDeletion):
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "partial deletion failure", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "internal error", err))
	}
}
