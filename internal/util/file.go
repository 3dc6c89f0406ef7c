package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DetectMimeType 读取文件头部判断 MIME 类型并校验白名单
func DetectMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

var unsafeNameReplacer = strings.NewReplacer(" ", "_", "#", "", "%", "", "&", "", "/", "", "\\", "", "?", "")

// SafeObjectName 生成唯一的对象名：uuid_清洗后的文件名
func SafeObjectName(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	name := unsafeNameReplacer.Replace(strings.TrimSuffix(base, ext))
	if name == "" {
		name = "file"
	}
	return uuid.New().String() + "_" + name + ext
}
