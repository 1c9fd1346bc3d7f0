package generator

// ApiData 是一次生成请求抓取到的接口文档快照，生成结束后即丢弃。
type ApiData struct {
	Documentation string `json:"documentation"` // 完整的文档内容
	RawHTML       string `json:"raw_html"`      // 原始 HTML，保留格式信息
	Title         string `json:"title"`         // 接口标题
}

// ApiParameter describes one request parameter of an API entry.
type ApiParameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"` // 参数位置：query/path/body/header/formData
	Required    bool   `json:"required"`
	DataType    string `json:"data_type"`
}
