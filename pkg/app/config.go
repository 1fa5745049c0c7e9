package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lk2023060901/petlink/pkg/config"
	"github.com/spf13/pflag"
)

const envPrefix = "PETLINK"

// LoadConfig 加载应用配置
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
func LoadConfig(args []string, target any, opts ...config.Option) (string, error) {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to config file")
	logLevel := fs.String("log.level", "", "override log level")
	port := fs.Int("web.port", 0, "override http port")
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if path == "" {
		execDir, err := GetExecDir()
		if err != nil {
			return "", fmt.Errorf("failed to get executable directory: %w", err)
		}
		path = filepath.Join(execDir, "config.yaml")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("config file not found at %s: %w", path, err)
	}

	mgr := config.NewManager(opts...)
	mgr.BindEnv(envPrefix)
	if err := mgr.LoadFile(path); err != nil {
		return "", err
	}
	if fs.Changed("log.level") {
		mgr.Set("log.level", *logLevel)
	}
	if fs.Changed("web.port") {
		mgr.Set("web.port", *port)
	}

	if err := mgr.Unmarshal(target); err != nil {
		return "", err
	}
	return path, nil
}

// GetExecDir 获取可执行文件所在目录（处理符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}
