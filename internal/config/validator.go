package config

import (
	"fmt"
	"strings"

	"github.com/weisyn/v1/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个验证错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	msg := "配置验证失败，发现以下问题：\n"
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidateMandatoryConfig 验证必填配置项
//
// 执行器与历史存储子系统只要求 environment 字段合法；其余子系统
// （网络身份、创世、挖矿……）的必填项校验不在本仓库范围内。
func ValidateMandatoryConfig(appConfig *types.AppConfig) error {
	var errs []error

	if appConfig != nil && appConfig.Environment != nil {
		env := strings.ToLower(strings.TrimSpace(*appConfig.Environment))
		if env != "" && env != "dev" && env != "test" && env != "prod" {
			errs = append(errs, &ValidationError{
				Field:   "environment",
				Message: fmt.Sprintf("无效的运行环境: %q，必须是 dev | test | prod", env),
			})
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}
