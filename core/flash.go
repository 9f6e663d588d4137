package core

import (
	"github.com/gin-gonic/gin"
)

const (
	flashNotice = "notice"
	flashAlert  = "alert"

	flashCookiePrefix = "flash_"
	flashMaxAge       = 60
)

// Flash holds the one-shot messages carried over a redirect.
type Flash struct {
	Notice string
	Alert  string
}

func (f Flash) Empty() bool {
	return f.Notice == "" && f.Alert == ""
}

func setFlash(gctx *gin.Context, kind string, message string) {
	gctx.SetCookie(flashCookiePrefix+kind, message, flashMaxAge, "/", "", false, true)
}

// takeFlash reads and clears the pending messages.
func takeFlash(gctx *gin.Context) Flash {
	var flash Flash

	for kind, target := range map[string]*string{flashNotice: &flash.Notice, flashAlert: &flash.Alert} {
		value, err := gctx.Cookie(flashCookiePrefix + kind)
		if err != nil || value == "" {
			continue
		}

		*target = value

		gctx.SetCookie(flashCookiePrefix+kind, "", -1, "/", "", false, true)
	}

	return flash
}
