// @title App Icon Server API
// @version 1.0
// @description 上传 1024x1024 图片，生成多尺寸应用图标
// @BasePath /
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"app-icon-server-go/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认依次查找 .config.yaml、config.yaml）")
	flag.Parse()

	fmt.Printf("[%s] [INFO] [引导] 开始启动 icon-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background(), bootstrap.Options{ConfigPath: *configPath}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "icon-server failed: %v\n", err)
		os.Exit(1)
	}
}
