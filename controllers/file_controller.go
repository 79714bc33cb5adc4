package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/sharedrop/config"
	"github.com/cppla/sharedrop/middleware"
	"github.com/cppla/sharedrop/repository"
	"github.com/cppla/sharedrop/services"
	"github.com/cppla/sharedrop/storage"
	"github.com/cppla/sharedrop/utils"
)

// FileController translates HTTP requests into calls on the file services
// and maps their typed errors back onto the JSON envelope. No lifecycle
// decision lives here; the services own all of it.
type FileController struct {
	upload   *services.UploadService
	download *services.DownloadService
	remove   *services.RemoveService
	sweeper  *services.Sweeper
	cfg      config.AppConfig
}

// NewFileController wires the controller over the shared stores.
func NewFileController(db *gorm.DB, content *storage.ContentStore, sweeper *services.Sweeper) *FileController {
	cfg := config.Get()
	users := repository.NewUserRepository(db)
	files := repository.NewFileRepository(db)
	retention := int64(cfg.RetentionMinutes)
	return &FileController{
		upload:   services.NewUploadService(users, files, content),
		download: services.NewDownloadService(files, content, cfg.DomainName, retention),
		remove:   services.NewRemoveService(files, content, retention),
		sweeper:  sweeper,
		cfg:      cfg,
	}
}

func listCacheKey(user string) string {
	return "cache:filelist:" + user
}

// Upload receives a multipart file plus a target user, spools the bytes to a
// temp file and runs the upload pipeline on it.
func (f *FileController) Upload(ctx *gin.Context) {
	owner := middleware.Username(ctx)

	file, header, err := ctx.Request.FormFile("filetoupload")
	if err != nil {
		file, header, err = ctx.Request.FormFile("file")
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40020, "no file uploaded")
			return
		}
	}
	defer file.Close()

	target := ctx.PostForm("targetuser")

	maxSize := int64(f.cfg.MaxUploadSizeMB) * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40021, fmt.Sprintf("file size exceeds %dMB", f.cfg.MaxUploadSizeMB))
		return
	}

	tmpPath := filepath.Join(os.TempDir(), "sharedrop-"+uuid.NewString())
	tmp, err := os.Create(tmpPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to spool upload")
		return
	}
	defer os.Remove(tmpPath)

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(tmp, lr)
	closeErr := tmp.Close()
	if err != nil || closeErr != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to spool upload")
		return
	}
	if written > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40021, fmt.Sprintf("file size exceeds %dMB", f.cfg.MaxUploadSizeMB))
		return
	}

	hashID, err := f.upload.Upload(tmpPath, filepath.Base(header.Filename), owner, target)
	if err != nil {
		f.respondUploadError(ctx, err)
		return
	}

	utils.CacheDelete(listCacheKey(target))
	utils.Success(ctx, gin.H{
		"hashId":   hashID,
		"shareUrl": f.shareURL(hashID, owner),
	})
}

func (f *FileController) respondUploadError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingInput),
		errors.Is(err, storage.ErrNoFileName),
		errors.Is(err, storage.ErrNoExtension):
		utils.Error(ctx, http.StatusBadRequest, 40022, err.Error())
	case errors.Is(err, services.ErrUnknownSourceUser):
		utils.Error(ctx, http.StatusUnauthorized, 40120, err.Error())
	case errors.Is(err, services.ErrUnknownTargetUser):
		utils.Error(ctx, http.StatusBadRequest, 40023, err.Error())
	case errors.Is(err, services.ErrSourceNotFound):
		utils.Error(ctx, http.StatusBadRequest, 40024, err.Error())
	case errors.Is(err, services.ErrDuplicateUpload):
		utils.Error(ctx, http.StatusConflict, 40920, err.Error())
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to store file")
	}
}

// List returns every file currently shared with the logged-in user.
func (f *FileController) List(ctx *gin.Context) {
	requester := middleware.Username(ctx)

	if b, ok := utils.CacheGetBytes(listCacheKey(requester)); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	views, err := f.download.ListAvailable(requester)
	if err != nil {
		if errors.Is(err, services.ErrNotLoggedIn) {
			utils.Error(ctx, http.StatusUnauthorized, 40121, err.Error())
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list files")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"files": views}}
	utils.CacheSetJSON(listCacheKey(requester), wrapper, time.Minute)
	utils.Success(ctx, gin.H{"files": views})
}

// Share returns the capability link for a file the caller uploaded.
func (f *FileController) Share(ctx *gin.Context) {
	owner := middleware.Username(ctx)
	hashID := ctx.Param("hash")
	if hashID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "missing file hash")
		return
	}
	utils.Success(ctx, gin.H{"link": f.shareURL(hashID, owner)})
}

func (f *FileController) shareURL(hashID, owner string) string {
	return fmt.Sprintf("%s/file?h=%s&u=%s", f.cfg.DomainName, hashID, owner)
}

// Download streams an authorized file to its recipient and schedules the
// post-download removal after the configured grace period.
func (f *FileController) Download(ctx *gin.Context) {
	requester := middleware.Username(ctx)
	hashID := ctx.Query("h")
	owner := ctx.Query("u")

	path, err := f.download.ResolvePath(requester, owner, hashID)
	if err != nil {
		if errors.Is(err, services.ErrNotLoggedIn) {
			utils.Error(ctx, http.StatusUnauthorized, 40122, err.Error())
			return
		}
		// Uniform answer for "no such file" and "not yours to read".
		utils.Error(ctx, http.StatusNotFound, 40420, services.ErrAccessDenied.Error())
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	ctx.FileAttachment(path, hashID+"."+ext)

	grace := time.Duration(f.cfg.DownloadGraceSeconds) * time.Second
	f.sweeper.DeferredRemove(owner, hashID, ext, grace)
	utils.CacheDelete(listCacheKey(requester))
}

// Remove deletes one of the caller's own uploads from both stores.
func (f *FileController) Remove(ctx *gin.Context) {
	owner := middleware.Username(ctx)
	hashID := ctx.Param("hash")

	switch st := f.remove.RemoveOne(owner, hashID, ""); st {
	case services.StatusRemoved:
		utils.Success(ctx, gin.H{"message": "file removed"})
	case services.StatusMissingArgs:
		utils.Error(ctx, http.StatusBadRequest, 40026, "missing file hash")
	case services.StatusRecordNotFound, services.StatusExtensionUnknown:
		utils.Error(ctx, http.StatusNotFound, 40421, "file not found")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to remove file")
	}
}
