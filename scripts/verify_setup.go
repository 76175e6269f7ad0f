package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/shirou/gopsutil/v3/mem"
)

// 渲染模式建议的最小可用内存
const minRenderMemoryMB = 512

func main() {
	fmt.Println("==============================================")
	fmt.Println("  webscraper 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	goVersion := runtime.Version()
	fmt.Printf("✅ Go版本: %s\n", goVersion)
	if !strings.HasPrefix(goVersion, "go1.23") && !strings.HasPrefix(goVersion, "go1.24") {
		fmt.Println("⚠️  警告: 建议使用Go 1.23+版本")
	}

	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 渲染模式需要本地Chromium
	if bin, found := launcher.LookPath(); found {
		fmt.Printf("✅ Chromium已安装: %s\n", bin)
	} else {
		fmt.Println("⚠️  未找到Chromium - 渲染模式首次运行时会自动下载")
		fmt.Println("   也可以通过配置 render.bin_path 指定浏览器路径")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		availMB := vm.Available / 1024 / 1024
		if availMB >= minRenderMemoryMB {
			fmt.Printf("✅ 可用内存: %d MB\n", availMB)
		} else {
			fmt.Printf("⚠️  可用内存不足: %d MB, 渲染模式可能不稳定\n", availMB)
		}
	} else {
		fmt.Printf("⚠️  无法读取内存信息: %v\n", err)
	}

	fmt.Println()
	fmt.Println("检查Go模块依赖...")
	if _, err := os.Stat("go.mod"); err == nil {
		fmt.Println("✅ go.mod文件存在")

		fmt.Println("正在下载依赖...")
		cmd := exec.Command("go", "mod", "download")
		if err := cmd.Run(); err != nil {
			fmt.Printf("❌ go mod download失败: %v\n", err)
			allOK = false
		} else {
			fmt.Println("✅ 依赖下载完成")
		}
	} else {
		fmt.Println("❌ go.mod文件不存在")
		allOK = false
	}

	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredDirs := []string{
		"cmd/webscraper",
		"internal/core",
		"internal/fetchers",
		"internal/crawler",
		"internal/output",
		"internal/pdf",
		"internal/utils",
		"internal/models",
		"configs",
	}

	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ 不存在\n", dir)
			allOK = false
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build -o webscraper ./cmd/webscraper' 构建项目")
		fmt.Println("  2. 运行 './webscraper --help' 查看帮助")
		os.Exit(0)
	}
	fmt.Println("❌ 环境验证失败,请解决上述问题。")
	os.Exit(1)
}
