package university

// CSVTemplate is the static import template offered for download from the
// dashboard. The header row matches what BulkUpload expects.
const CSVTemplate = `name,short_name,sector,city,status,bachelors_programs,masters_programs,phd_programs
National University of Sciences and Technology,NUST,Public,Islamabad,active,45,60,25
Lahore University of Management Sciences,LUMS,Private,Lahore,active,25,15,8
`

// CSVTemplateFilename is the suggested download name for CSVTemplate.
const CSVTemplateFilename = "universities-template.csv"
