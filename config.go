package webhookauth

import (
	"os"
	"reflect"
	"strings"

	"github.com/cmstar/go-conv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// 读取配置时使用的 key ，层级之间用冒号分割。参考 [EnvSource] 对 key 的转换。
const (
	ConfigKeyAuthToken        = "twilio:requestValidation:authToken"
	ConfigKeyFallbackToken    = "twilio:authToken"
	ConfigKeyBaseURLOverride  = "twilio:requestValidation:baseUrlOverride"
	ConfigKeyAllowLocal       = "twilio:requestValidation:allowLocal"
	ConfigKeySignatureHeader  = "twilio:requestValidation:signatureHeader"
	ConfigKeyMaxBodySizeBytes = "twilio:requestValidation:maxBodySize"
)

// Config 是 [Validator] 的配置。配置在创建 [Validator] 后不可修改，可被任意多个请求并发读取。
type Config struct {
	// AuthToken 是用于计算签名的共享密钥，必须提供。不允许出现在日志中。
	AuthToken string

	// BaseURLOverride 若不为空，则计算签名时用其代替请求的 SCHEME://HOST 部分。
	// 用于服务部署在反向代理或负载均衡后面，收到的请求的地址和外部地址不一致的情况。末尾的“/”会被去掉。
	BaseURLOverride string

	// AllowLocal 为 true 时，来自本机的请求跳过签名校验。
	// 仅在开发时使用，否则会带来服务端请求伪造（ SSRF ）的风险。
	AllowLocal bool

	// SignatureHeader 是携带签名的 HTTP 头。为空时使用 [HttpHeaderSignature] 。
	SignatureHeader string

	// MaxBodySize 是读取 body 时允许的最大字节数。为 0 时使用 [DefaultMaxBodySize] 。
	MaxBodySize int64
}

// Check 校验配置，并返回补全了默认值的配置。缺少 AuthToken 时返回 [ConfigError] 。
func (c Config) Check() (Config, error) {
	if c.AuthToken == "" {
		return c, CreateConfigError(nil, "auth token not configured")
	}

	if c.MaxBodySize < 0 {
		return c, CreateConfigError(nil, "max body size must not be negative, got %d", c.MaxBodySize)
	}

	c.BaseURLOverride = strings.TrimRight(c.BaseURLOverride, "/")

	if c.SignatureHeader == "" {
		c.SignatureHeader = HttpHeaderSignature
	}

	if c.MaxBodySize == 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}

	return c, nil
}

// KeySource 用于按 key 读取配置值。
type KeySource interface {
	// Lookup 返回 key 对应的值。若 key 不存在，返回 ok=false 。
	Lookup(key string) (value string, ok bool)
}

// KeySourceFunc 将给定的函数包装为 [KeySource] 。
type KeySourceFunc func(key string) (string, bool)

// Lookup implements [KeySource.Lookup].
func (f KeySourceFunc) Lookup(key string) (string, bool) {
	return f(key)
}

// MapSource 是基于 map 的 [KeySource] ， key 区分大小写。
type MapSource map[string]string

// Lookup implements [KeySource.Lookup].
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvSource 从环境变量读取配置。
// key 中的冒号被替换为两个下划线，并转为大写，如 twilio:authToken 对应环境变量 TWILIO__AUTHTOKEN 。
//
// 这是一个单例。
var EnvSource KeySource = KeySourceFunc(func(key string) (string, bool) {
	name := strings.ToUpper(strings.ReplaceAll(key, ":", "__"))
	return os.LookupEnv(name)
})

// ViperSource 将 [viper.Viper] 包装为 [KeySource] 。 key 中的冒号被替换为 viper 的层级分隔符“.”。
// viper 的 key 不区分大小写。环境变量等来源的绑定由调用方在 v 上完成，如：
//
//	v := viper.New()
//	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
//	v.AutomaticEnv()
//	config, err := webhookauth.ResolveConfig(webhookauth.ViperSource(v))
func ViperSource(v *viper.Viper) KeySource {
	return KeySourceFunc(func(key string) (string, bool) {
		k := strings.ReplaceAll(key, ":", ".")
		if !v.IsSet(k) {
			return "", false
		}
		return v.GetString(k), true
	})
}

// 用于将配置中的字符串转换为目标类型。
var _conv = conv.Conv{
	Conf: conv.Config{
		FieldMatcherCreator: &conv.SimpleMatcherCreator{
			Conf: conv.SimpleMatcherConfig{
				CaseInsensitive: true,
			},
		},
	},
}

// ResolveConfig 从给定的 [KeySource] 读取配置，并通过 [Config.Check] 校验。
//
// AuthToken 优先读取 [ConfigKeyAuthToken] ，没有时读取 [ConfigKeyFallbackToken] ；
// 均没有时返回 [ConfigError] 。
func ResolveConfig(src KeySource) (Config, error) {
	raw := rawConfig{}

	raw.AuthToken, _ = src.Lookup(ConfigKeyAuthToken)
	if raw.AuthToken == "" {
		raw.AuthToken, _ = src.Lookup(ConfigKeyFallbackToken)
	}

	raw.BaseURLOverride, _ = src.Lookup(ConfigKeyBaseURLOverride)
	raw.AllowLocal, _ = src.Lookup(ConfigKeyAllowLocal)
	raw.SignatureHeader, _ = src.Lookup(ConfigKeySignatureHeader)
	raw.MaxBodySize, _ = src.Lookup(ConfigKeyMaxBodySizeBytes)

	return raw.toConfig()
}

// LoadConfigYAML 从 YAML 文档中读取配置，并通过 [Config.Check] 校验。文档格式为：
//
//	twilio:
//	  authToken: fallback-token
//	  requestValidation:
//	    authToken: token
//	    baseUrlOverride: https://example.com
//	    allowLocal: false
//	    signatureHeader: X-Twilio-Signature
//	    maxBodySize: 1048576
//
// requestValidation.authToken 优先于 twilio.authToken 。
func LoadConfigYAML(data []byte) (Config, error) {
	var doc struct {
		Twilio struct {
			AuthToken         string    `yaml:"authToken"`
			RequestValidation rawConfig `yaml:"requestValidation"`
		} `yaml:"twilio"`
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, CreateConfigError(err, "invalid YAML config")
	}

	raw := doc.Twilio.RequestValidation
	if raw.AuthToken == "" {
		raw.AuthToken = doc.Twilio.AuthToken
	}

	return raw.toConfig()
}

// rawConfig 记录未经转换的配置值。
type rawConfig struct {
	AuthToken       string `yaml:"authToken"`
	BaseURLOverride string `yaml:"baseUrlOverride"`
	AllowLocal      string `yaml:"allowLocal"`
	SignatureHeader string `yaml:"signatureHeader"`
	MaxBodySize     string `yaml:"maxBodySize"`
}

func (raw rawConfig) toConfig() (Config, error) {
	c := Config{
		AuthToken:       raw.AuthToken,
		BaseURLOverride: raw.BaseURLOverride,
		SignatureHeader: raw.SignatureHeader,
	}

	if raw.AllowLocal != "" {
		v, err := _conv.ConvertType(raw.AllowLocal, reflect.TypeOf(false))
		if err != nil {
			return Config{}, CreateConfigError(err, "invalid allowLocal '%s'", raw.AllowLocal)
		}
		c.AllowLocal = v.(bool)
	}

	if raw.MaxBodySize != "" {
		v, err := _conv.ConvertType(raw.MaxBodySize, reflect.TypeOf(int64(0)))
		if err != nil {
			return Config{}, CreateConfigError(err, "invalid maxBodySize '%s'", raw.MaxBodySize)
		}
		c.MaxBodySize = v.(int64)
	}

	return c.Check()
}
