package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 模块附件允许的 MIME 前缀
var AllowedAttachmentTypes = []string{
	"application/pdf",
	"application/zip",
	"application/octet-stream",
	"image/",
	"video/",
	"text/",
}

const MaxAttachmentSize = 200 << 20
