package tool

import "github.com/gin-gonic/gin"

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnSuccess(msg string) gin.H {
	return gin.H{
		"message": msg,
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}
