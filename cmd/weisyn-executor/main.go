// Command weisyn-executor runs the block executor as a long-lived process:
// storage, the executor and its ports, and (unless disabled) the debug HTTP
// API, wired through the full infrastructure/communication/business/
// application layer bootstrap.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/weisyn/v1/internal/app"
)

func main() {
	var (
		configPath string
		dataRoot   string
		env        string
		enableAPI  bool
	)

	flag.StringVar(&configPath, "config", "", "配置文件路径（可选，默认使用内置默认配置）")
	flag.StringVar(&dataRoot, "data-dir", "", "数据目录（覆盖配置文件中的存储路径）")
	flag.StringVar(&env, "env", "", "运行环境：dev | test | prod")
	flag.BoolVar(&enableAPI, "api", true, "是否启用调试HTTP API")
	flag.Parse()

	var opts []app.Option
	if configPath != "" {
		opts = append(opts, app.WithConfigFile(configPath))
	}
	if dataRoot != "" {
		opts = append(opts, app.WithDataRoot(dataRoot))
	}
	if env != "" {
		opts = append(opts, app.WithEnvironment(env))
	}
	if enableAPI {
		opts = append(opts, app.WithAPI())
	} else {
		opts = append(opts, app.WithoutAPI())
	}

	instance, err := app.Start(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}

	instance.Wait()
}
