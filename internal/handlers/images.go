package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"animehost/internal/middleware"
	"animehost/internal/repository"
	"animehost/internal/service"
)

const multipartOverhead = 10 << 10

func (h HandlerSet) ShowUpload(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", h.view(c, gin.H{
		"Title": "Upload Image",
	}))
}

func (h HandlerSet) Upload(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	renderForm := func(data gin.H) {
		data["Title"] = "Upload Image"
		c.HTML(http.StatusOK, "upload.html", h.view(c, data))
	}

	// Cap the body before the multipart parse so an oversized upload is cut
	// off at the wire instead of being spooled to disk first. The allowance
	// covers boundaries and the text fields beside the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxSizeBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			renderForm(gin.H{"Error": "Upload failed: " + service.ErrFileTooLarge.Error()})
			return
		}
		renderForm(gin.H{"Error": "No file uploaded"})
		return
	}
	defer file.Close()

	_, err = h.images.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:     sess.UserID,
		OwnerName:   sess.Username,
		File:        file,
		Header:      header,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostFormArray("tags"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge),
			errors.Is(err, service.ErrUnsupportedFile),
			errors.Is(err, service.ErrNoFile):
			renderForm(gin.H{"Error": "Upload failed: " + err.Error()})
		default:
			h.log.Error().Err(err).Str("user_id", sess.UserID).Msg("upload failed")
			renderForm(gin.H{"Error": "Upload failed. Please try again."})
		}
		return
	}

	renderForm(gin.H{"Success": "Image uploaded successfully!"})
}

func (h HandlerSet) Gallery(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))

	result, err := h.images.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		h.log.Error().Err(err).Msg("gallery listing failed")
		h.renderError(c, http.StatusInternalServerError, "Error", "Failed to load images")
		return
	}

	c.HTML(http.StatusOK, "gallery.html", h.view(c, gin.H{
		"Title":      "Image Gallery",
		"Images":     result.Images,
		"Search":     result.Search,
		"Page":       result.Page,
		"TotalPages": result.TotalPages,
		"Total":      result.Total,
	}))
}

func (h HandlerSet) MyImages(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	images, err := h.images.ListByOwner(c.Request.Context(), sess.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", sess.UserID).Msg("my-images listing failed")
		h.renderError(c, http.StatusInternalServerError, "Error", "Failed to load your images")
		return
	}

	c.HTML(http.StatusOK, "my_images.html", h.view(c, gin.H{
		"Title":  "My Images",
		"Images": images,
	}))
}

func (h HandlerSet) ImageDetail(c *gin.Context) {
	image, err := h.images.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			h.renderError(c, http.StatusNotFound, "Image Not Found", "The requested image could not be found")
			return
		}
		h.log.Error().Err(err).Str("image_id", c.Param("id")).Msg("image fetch failed")
		h.renderError(c, http.StatusInternalServerError, "Error", "Server Error")
		return
	}

	c.HTML(http.StatusOK, "image.html", h.view(c, gin.H{
		"Title": image.Title,
		"Image": image,
	}))
}

func (h HandlerSet) ShowEdit(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	image, err := h.images.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderOwnershipError(c, err)
		return
	}
	if image.UserID != sess.UserID {
		h.renderError(c, http.StatusForbidden, "Forbidden", "You do not have permission to edit this image")
		return
	}

	c.HTML(http.StatusOK, "edit.html", h.view(c, gin.H{
		"Title": "Edit " + image.Title,
		"Image": image,
	}))
}

func (h HandlerSet) Edit(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	imageID := c.Param("id")

	err := h.images.Edit(c.Request.Context(), sess.UserID, imageID, service.EditInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostFormArray("tags"),
	})
	if err != nil {
		h.renderOwnershipError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/images/"+imageID)
}

func (h HandlerSet) Delete(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	if err := h.images.Delete(c.Request.Context(), sess.UserID, c.Param("id")); err != nil {
		h.renderOwnershipError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/images")
}

func (h HandlerSet) renderOwnershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrImageNotFound):
		h.renderError(c, http.StatusNotFound, "Image Not Found", "The requested image could not be found")
	case errors.Is(err, service.ErrForbidden):
		h.renderError(c, http.StatusForbidden, "Forbidden", "You do not have permission to modify this image")
	default:
		h.log.Error().Err(err).Msg("image mutation failed")
		h.renderError(c, http.StatusInternalServerError, "Error", "Server Error")
	}
}
