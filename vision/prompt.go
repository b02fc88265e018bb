package vision

// ExtractionPrompt is the fixed instruction sent with every document image.
// The model replies with a JSON object: documentType at the root, key/value
// pairs with per-field confidence error markers, and a totalError array
// listing the low-confidence field names.
const ExtractionPrompt = `
Analyze the document using OpenAI Vision to determine the type of document and extract as much data as possible. Organize the data into a JSON format with key-value pairs. At the root level, include a key called documentType that indicates the type of the document (e.g., invoice, contract, receipt, etc.).

Use a key-value structure where:

Keys represent labels (e.g., name, date, address, etc.)
Values represent the corresponding data extracted.
If there are multiple entries under a category (e.g., items), organize them as an array of objects, where each object contains the extracted data for that item.
Error Handling:

If the extracted data has a confidence level of 80% or below, mark the entry with an error field set to true and include an errorMessage explaining the issue (e.g., "low confidence", "missing text", "could not recognize").
If the confidence level is above 80%, set the error field to false.

If no errors are found in any of the data, the totalError field should be an empty array at the root level. If there are errors in any field, include those keys in the totalError array.
Items Structure:
If items that represent categories or tables with multiple entries , return key is "items" and value is an array of objects. Each object contains the extracted data for that item.
For each item in the array, provide the extracted data for that item, following the same structure as for other data points.
all object must have value property if value is not provided store as empty string.
`
