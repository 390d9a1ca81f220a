package shopify

const productCreateMutation = `
mutation createProduct($input: ProductInput!, $media: [CreateMediaInput!]) {
    productCreate(input: $input, media: $media) {
        product {
            id
            title
            variants(first: 1) {
                edges {
                    node {
                        id
                        title
                    }
                }
            }
        }
        userErrors {
            field
            message
        }
    }
}`

const productVariantsBulkCreateMutation = `
mutation productVariantsBulkCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
    productVariantsBulkCreate(productId: $productId, variants: $variants) {
        product {
            id
        }
        productVariants {
            id
        }
        userErrors {
            field
            message
        }
    }
}`

const productVariantDeleteMutation = `
mutation productVariantDelete($id: ID!) {
    productVariantDelete(id: $id) {
        deletedProductVariantId
        product {
            id
            title
        }
        userErrors {
            field
            message
        }
    }
}`

const collectionsQuery = `
query getCollections($title: String!) {
    collections(first: 1, query: $title) {
        edges {
            node {
                id
                title
            }
        }
    }
}`

const collectionCreateMutation = `
mutation CollectionCreate($input: CollectionInput!) {
    collectionCreate(input: $input) {
        collection {
            id
            title
        }
        userErrors {
            field
            message
        }
    }
}`

const collectionAddProductsMutation = `
mutation collectionAddProductsV2($id: ID!, $productIds: [ID!]!) {
    collectionAddProductsV2(id: $id, productIds: $productIds) {
        job {
            done
            id
        }
        userErrors {
            field
            message
        }
    }
}`

const productUpdateMutation = `
mutation updateProduct($input: ProductInput!) {
    productUpdate(input: $input) {
        product {
            id
            title
            updatedAt
        }
        userErrors {
            field
            message
        }
    }
}`

const publishablePublishMutation = `
mutation publishablePublish($id: ID!, $input: [PublicationInput!]!) {
    publishablePublish(id: $id, input: $input) {
        publishable {
            availablePublicationsCount {
                count
            }
            resourcePublicationsCount {
                count
            }
        }
        userErrors {
            field
            message
        }
    }
}`

const locationsQuery = `
query {
    locations(first: 5) {
        edges {
            node {
                id
                name
                address {
                    formatted
                }
            }
        }
    }
}`

const publicationsQuery = `
query {
    publications(first: 5) {
        edges {
            node {
                id
                name
                supportsFuturePublishing
            }
        }
    }
}`
