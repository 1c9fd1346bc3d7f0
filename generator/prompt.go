package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

// PromptOptions 控制指令的详细程度。
type PromptOptions struct {
	// JSDoc 为 true 时追加代码格式与 JSDoc 注释要求。
	JSDoc bool
}

const baseRules = "你是一个TypeScript接口生成助手。你的任务是根据Swagger API文档生成TypeScript接口定义。\n" +
	"请严格遵循以下规则：\n" +
	"1. 只输出TypeScript代码，不要包含任何其他解释性文字\n" +
	"2. 不要使用```typescript这样的标记\n" +
	"3. 生成三个部分：\n" +
	"   - [接口名]Request：请求参数接口\n" +
	"   - [中间的所有相关接口]：如果有嵌套类型，需要定义为独立接口\n" +
	"   - [接口名]Response：响应数据接口\n" +
	"   - 最后生成request函数：必须完全按照提供的模板格式生成，特别注意：\n" +
	"     * 分析模板中使用的请求对象名称和方法（如Api.get、mapi.post等），在生成代码时使用相同的对象和方法\n" +
	"     * 必须保持与模板完全相同的格式，包括空格、换行、缩进等\n" +
	"     * 只替换以下内容：\n" +
	"       - 函数名：使用驼峰命名\n" +
	"       - 参数类型：使用对应的Request接口\n" +
	"       - 返回值泛型：使用对应的Response类型\n" +
	"       - URL路径：使用实际的API路径\n" +
	"     * 其他所有内容（包括请求对象名称）必须与模板保持完全一致"

const jsdocRules = "4. 代码格式要求：\n" +
	"   - 使用大驼峰命名法\n" +
	"   - 每个接口和字段都必须有完整的JSDoc注释，包括：\n" +
	"     * 接口注释：说明该接口的用途\n" +
	"     * 字段注释：说明字段的含义、类型、是否必填等信息\n" +
	"     * 使用 @description 标记详细描述\n" +
	"     * 使用 @example 标记示例值（如果有）\n" +
	"     * 使用 @default 标记默认值（如果有）\n" +
	"     * 使用 @required 标记必填字段\n" +
	"   - 标记可选字段（使用?:）\n" +
	"   - 嵌套对象使用独立的类型定义\n" +
	"   - 数组类型使用Array<T>形式\n" +
	"   - 使用2个空格缩进\n" +
	"   - request函数必须与模板完全一致，使用模板中指定的请求对象和方法"

var userNotes = []string{
	"分析模板中的请求对象名称（如Api、mapi等），在生成的代码中使用相同的对象名称",
	"必须严格按照模板格式，保持完全一致的结构和风格",
	"只替换函数名、类型和URL路径",
	"请求方式必须与模板保持一致（如get、post等）",
}

// BuildInterfacePrompt 生成接口定义的提示词。文档为空时原样转发。
func BuildInterfacePrompt(data ApiData, template string, opts PromptOptions) Prompt {
	system := baseRules
	if opts.JSDoc {
		system += "\n" + jsdocRules
	}

	var sb strings.Builder
	sb.WriteString("根据以下Swagger API文档生成TypeScript接口定义：\n\n")
	sb.WriteString("文档内容：\n")
	sb.WriteString(data.Documentation)
	sb.WriteString("\n\n请求函数模板（分析并使用此模板中的请求对象和方法）：\n")
	sb.WriteString(template)
	sb.WriteString("\n\n注意：\n")
	notes := userNotes
	if opts.JSDoc {
		notes = append(notes[:len(notes):len(notes)], "确保生成的每个接口和字段都有完整的JSDoc注释")
	}
	for i, n := range notes {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, n))
	}

	return Prompt{
		System: system,
		User:   strings.TrimRight(sb.String(), "\n"),
	}
}
